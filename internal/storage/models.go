package storage

type Category struct {
	ID       string
	Name     string
	Color    string
	Position int64
}

type ImportHistory struct {
	ID            int64
	ImportID      string
	SessionID     string
	Bank          string
	FileName      string
	RowCount      int64
	AcceptedCount int64
	SkippedCount  int64
	TotalAmount   string
	ImportedAt    string
}
