package mysql

const insertAuditSQL = `
INSERT INTO audit_log
  (actor, entity, record_id, action, status, message)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const recentAuditSQL = `
SELECT id, actor, entity, record_id, action, status, message, created_at
FROM audit_log
ORDER BY created_at DESC, id DESC
LIMIT ?
`
