package config

const (
	// TopicIngest is the NSQ topic carrying document ingestion tasks.
	TopicIngest = "ingest.task"

	// ChannelIngest is the consumer channel for the ingest worker.
	ChannelIngest = "ingest-worker"
)
