package jobs

// SendPickupReminders reminds farmers whose approved rental starts tomorrow.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", jr.reminders.SendPickupReminders)
}

// SendReturnReminders reminds farmers whose active rental ends after today.
func (jr *JobRunner) SendReturnReminders() {
	jr.runWithRecovery("SendReturnReminders", jr.reminders.SendReturnReminders)
}

// FlagOverdueRentals alerts on active rentals past their end date. Status is left unchanged.
func (jr *JobRunner) FlagOverdueRentals() {
	jr.runWithRecovery("FlagOverdueRentals", jr.reminders.FlagOverdueRentals)
}

// Names lists the jobs accepted by Lookup, in the order RunAllDailyJobs runs them.
func Names() []string {
	return []string{"flag-overdue", "return-reminders", "pickup-reminders", "all-daily"}
}

// Lookup resolves a job name as used by the cron binary's -run-once flag.
func (jr *JobRunner) Lookup(name string) (func(), bool) {
	switch name {
	case "flag-overdue":
		return jr.FlagOverdueRentals, true
	case "return-reminders":
		return jr.SendReturnReminders, true
	case "pickup-reminders":
		return jr.SendPickupReminders, true
	case "all-daily":
		return jr.RunAllDailyJobs, true
	}
	return nil, false
}
