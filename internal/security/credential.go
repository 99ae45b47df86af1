package security

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"agrirent-backend/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const credentialVersion = "AGR1"

var b64 = base64.RawURLEncoding

// CredentialClaims is the payload bound into a pickup or return token.
type CredentialClaims struct {
	RequestID   int32                    `json:"rid"`
	EquipmentID int32                    `json:"eid"`
	Purpose     domain.CredentialPurpose `json:"p"`
	Nonce       string                   `json:"n"`
}

// CredentialIssuer mints and checks the scannable tokens that gate pickup and return.
type CredentialIssuer interface {
	// Prepare assigns fresh nonces and digests for both purposes on an approved request.
	Prepare(rt *domain.RentalRequest) error
	// Issue re-derives the token for purpose from the nonce stored on rt.
	Issue(rt *domain.RentalRequest, purpose domain.CredentialPurpose) (string, error)
	Parse(token string) (*CredentialClaims, error)
	// CheckBinding parses token and checks it names rt and purpose. It does not consult stored state.
	CheckBinding(token string, rt *domain.RentalRequest, purpose domain.CredentialPurpose) error
	// Verify checks token against rt for purpose without changing rt.
	Verify(token string, rt *domain.RentalRequest, purpose domain.CredentialPurpose) error
	Digest(token string) string
}

type credentialIssuer struct {
	key []byte
}

func NewCredentialIssuer(secret string) CredentialIssuer {
	key := blake2b.Sum256([]byte(secret))
	return &credentialIssuer{key: key[:]}
}

func (c *credentialIssuer) Prepare(rt *domain.RentalRequest) error {
	rt.PickupNonce = uuid.NewString()
	rt.ReturnNonce = uuid.NewString()

	pickup, err := c.Issue(rt, domain.CredentialPurposePickup)
	if err != nil {
		return err
	}
	ret, err := c.Issue(rt, domain.CredentialPurposeReturn)
	if err != nil {
		return err
	}
	rt.PickupCredentialDigest = c.Digest(pickup)
	rt.ReturnCredentialDigest = c.Digest(ret)
	return nil
}

func (c *credentialIssuer) Issue(rt *domain.RentalRequest, purpose domain.CredentialPurpose) (string, error) {
	nonce := rt.CredentialNonce(purpose)
	if nonce == "" {
		return "", fmt.Errorf("%w: no %s credential for request %d", domain.ErrCredentialInvalid, purpose, rt.ID)
	}
	payload, err := json.Marshal(CredentialClaims{
		RequestID:   rt.ID,
		EquipmentID: rt.EquipmentID,
		Purpose:     purpose,
		Nonce:       nonce,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}
	body := credentialVersion + "." + b64.EncodeToString(payload)
	return body + "." + b64.EncodeToString(c.mac(body)), nil
}

func (c *credentialIssuer) Parse(token string) (*CredentialClaims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 || parts[0] != credentialVersion {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrCredentialInvalid)
	}
	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", domain.ErrCredentialInvalid)
	}
	if subtle.ConstantTimeCompare(sig, c.mac(parts[0]+"."+parts[1])) != 1 {
		return nil, fmt.Errorf("%w: signature mismatch", domain.ErrCredentialInvalid)
	}
	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrCredentialInvalid)
	}
	var claims CredentialClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", domain.ErrCredentialInvalid)
	}
	return &claims, nil
}

func (c *credentialIssuer) CheckBinding(token string, rt *domain.RentalRequest, purpose domain.CredentialPurpose) error {
	claims, err := c.Parse(token)
	if err != nil {
		return err
	}
	if claims.RequestID != rt.ID || claims.EquipmentID != rt.EquipmentID {
		return fmt.Errorf("%w: token is bound to another request", domain.ErrCredentialInvalid)
	}
	if claims.Purpose != purpose {
		return fmt.Errorf("%w: token is for %s, not %s", domain.ErrCredentialInvalid, claims.Purpose, purpose)
	}
	return nil
}

func (c *credentialIssuer) Verify(token string, rt *domain.RentalRequest, purpose domain.CredentialPurpose) error {
	if err := c.CheckBinding(token, rt, purpose); err != nil {
		return err
	}
	stored := rt.CredentialDigest(purpose)
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(c.Digest(token))) != 1 {
		return fmt.Errorf("%w: token was not issued for this request", domain.ErrCredentialInvalid)
	}
	if rt.CredentialConsumed(purpose) {
		return domain.ErrCredentialAlreadyConsumed
	}
	return nil
}

// Digest is the non-reversible value persisted in place of the token.
func (c *credentialIssuer) Digest(token string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func (c *credentialIssuer) mac(body string) []byte {
	h, _ := blake2b.New256(c.key)
	h.Write([]byte(body))
	return h.Sum(nil)
}
