package constant

const (
	SeasonUpdatedSubject = "SEASON.updated"
	SeasonDeletedSubject = "SEASON.deleted"

	StatsWorkerDurable = "boxstats-statswkr"
	StatsWorkerQueue   = "statswkr"
)
