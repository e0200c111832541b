package cache

// Schema contains SQL schema definitions for the cache
const Schema = `
-- Messages table
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    conversation_id TEXT NOT NULL,
    sender TEXT NOT NULL,
    recipients TEXT,
    subject TEXT,
    body TEXT,
    sent_at DATETIME NOT NULL,
    attachment_count INTEGER DEFAULT 0,
    read INTEGER DEFAULT 0,
    flagged INTEGER DEFAULT 0,
    cached_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Conversation summaries table
CREATE TABLE IF NOT EXISTS summaries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL UNIQUE,
    lifecycle_state TEXT NOT NULL,
    priority_score INTEGER NOT NULL,
    priority_level TEXT NOT NULL,
    response_needed INTEGER DEFAULT 0,
    summary_json TEXT NOT NULL,
    analyzed_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Create indexes for faster queries
CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
CREATE INDEX IF NOT EXISTS idx_messages_sent_at ON messages(sent_at);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender);
CREATE INDEX IF NOT EXISTS idx_summaries_score ON summaries(priority_score);

-- Full-text search index
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    subject,
    sender,
    body,
    content='messages',
    content_rowid='id'
);

-- Triggers for FTS
CREATE TRIGGER IF NOT EXISTS messages_fts_insert AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, subject, sender, body)
    VALUES (new.id, new.subject, new.sender, new.body);
END;

CREATE TRIGGER IF NOT EXISTS messages_fts_update AFTER UPDATE ON messages BEGIN
    UPDATE messages_fts SET
        subject = new.subject,
        sender = new.sender,
        body = new.body
    WHERE rowid = new.id;
END;

CREATE TRIGGER IF NOT EXISTS messages_fts_delete AFTER DELETE ON messages BEGIN
    DELETE FROM messages_fts WHERE rowid = old.id;
END;
`
