package storage

// schema is applied on open. Metric events are fully flattened (no nested
// objects) to suit columnar consumers reading the same file.
const schema = `
CREATE TABLE IF NOT EXISTS metric_events (
	id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	producer_id TEXT NOT NULL,
	category TEXT NOT NULL,
	overall_score REAL NOT NULL,
	quality_level TEXT NOT NULL,
	specificity_score REAL NOT NULL,
	actionability_score REAL NOT NULL,
	quantification_score REAL NOT NULL,
	relevance_score REAL NOT NULL,
	completeness_score REAL NOT NULL,
	novelty_score REAL NOT NULL,
	clarity_score REAL NOT NULL,
	redundancy_ratio REAL NOT NULL,
	generic_phrase_count INTEGER NOT NULL,
	circular_reasoning INTEGER NOT NULL,
	hallucination_risk REAL NOT NULL,
	word_count INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	retry_suggested INTEGER NOT NULL,
	user_id TEXT,
	thread_id TEXT,
	run_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_metric_events_producer ON metric_events(producer_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_metric_events_timestamp ON metric_events(timestamp);

CREATE TABLE IF NOT EXISTS agent_profiles (
	producer_id TEXT PRIMARY KEY,
	request_count INTEGER NOT NULL,
	average_score REAL NOT NULL,
	level_distribution TEXT NOT NULL,
	slop_count INTEGER NOT NULL,
	issues TEXT,
	recommendations TEXT,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	severity TEXT NOT NULL,
	metric_type TEXT NOT NULL,
	producer_id TEXT NOT NULL,
	message TEXT NOT NULL,
	current_value REAL NOT NULL,
	threshold REAL NOT NULL,
	details TEXT,
	acknowledged INTEGER NOT NULL DEFAULT 0,
	resolved INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_alerts_producer ON alerts(producer_id, created_at);
`
