package model

// RecurringImport is one row of the run ledger. Times are unix seconds.
type RecurringImport struct {
	ID               uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	StartDatetime    int64  `gorm:"column:start_datetime;not null"`
	EndDatetime      int64  `gorm:"column:end_datetime;not null"`
	Status           string `gorm:"column:status;type:text;not null;index"`
	TotalRecords     int64  `gorm:"column:total_records;not null;default:0"`
	ProcessedRecords int64  `gorm:"column:processed_records;not null;default:0"`
	SuccessRecords   int64  `gorm:"column:success_records;not null;default:0"`
	ErrorRecords     int64  `gorm:"column:error_records;not null;default:0"`
	ExecutionType    string `gorm:"column:execution_type;type:text;not null"`
}

func (RecurringImport) TableName() string {
	return "icecat_recurring_import"
}

// SingleRunningIndexSQL lets the database reject a second running row.
const SingleRunningIndexSQL = "CREATE UNIQUE INDEX IF NOT EXISTS idx_icecat_recurring_import_single_running " +
	"ON icecat_recurring_import(status) WHERE status = 'running'"
