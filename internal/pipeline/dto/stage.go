package dto

// StageRunRequest is the payload published on the stage-run stream. An empty
// Symbol means the stage covers its full default symbol set.
type StageRunRequest struct {
	Stage       string `json:"stage"`
	Symbol      string `json:"symbol,omitempty"`
	DryRun      bool   `json:"dry_run,omitempty"`
	ScheduleID  *uint  `json:"schedule_id,omitempty"`
	StageRunID  *uint  `json:"stage_run_id,omitempty"`
	RequestedBy string `json:"requested_by"`
}

// AnalysisRunRequest is the payload published on the analysis-run stream.
type AnalysisRunRequest struct {
	AnalysisID uint `json:"analysis_id"`
}

// SymbolStageResult is the per-symbol outcome a stage reports in its output.
type SymbolStageResult struct {
	Symbol  string `json:"symbol"`
	Status  string `json:"status"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NotifyStageResult is the outcome of one notifier run.
type NotifyStageResult struct {
	DryRun     bool   `json:"dry_run"`
	Candidates int    `json:"candidates"`
	Notified   int    `json:"notified"`
	Error      string `json:"error,omitempty"`
}

// CleanupStageResult is the outcome of one cleanup sweep.
type CleanupStageResult struct {
	FinancialDataRemoved int64 `json:"financial_data_removed"`
	SentimentRemoved     int64 `json:"sentiment_removed"`
}
