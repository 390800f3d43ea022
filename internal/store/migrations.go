package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    run_date      TEXT NOT NULL,
    item_count    INTEGER NOT NULL DEFAULT 0,
    cluster_count INTEGER NOT NULL DEFAULT 0,
    degraded      BOOLEAN NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_run_date ON runs(run_date);

CREATE TABLE IF NOT EXISTS ranked_items (
    run_id          TEXT NOT NULL REFERENCES runs(id),
    position        INTEGER NOT NULL,
    title           TEXT NOT NULL,
    url             TEXT NOT NULL DEFAULT '',
    platforms       TEXT NOT NULL DEFAULT '[]',
    rank_score      REAL NOT NULL DEFAULT 0,
    frequency_score REAL NOT NULL DEFAULT 0,
    keyword_score   REAL NOT NULL DEFAULT 0,
    final_score     REAL NOT NULL DEFAULT 0,
    first_seen      DATETIME NOT NULL,
    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_ranked_items_run ON ranked_items(run_id);
`
