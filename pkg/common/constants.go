package common

const (
	RedisStreamStageRun    = "newsroom.stage.run"
	RedisStreamAnalysisRun = "newsroom.analysis.run"

	RedisStreamGroup    = "pipeline-group"
	RedisStreamConsumer = "pipeline-consumer"

	StageLockKeyPrefix = "newsroom:stage:"
)
