package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS releases (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    kind        TEXT NOT NULL,
    version     TEXT NOT NULL,
    previous    TEXT,
    tag         TEXT,
    commit_sha  TEXT,
    branch      TEXT,
    target      TEXT,
    reason      TEXT,
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_releases_kind ON releases(kind);
CREATE INDEX IF NOT EXISTS idx_releases_created ON releases(created_at DESC);
`
