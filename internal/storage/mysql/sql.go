package mysql

// LAST_INSERT_ID(expr) hands the allocated value back through the result of
// the same statement, so the row lock taken by the upsert covers the read.
const nextIDSQL = `
INSERT INTO sequences (name, value)
VALUES (?, LAST_INSERT_ID(1))
ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)
`

const upsertFeedbackSQL = `
INSERT INTO feedback
  (id, customer_id, provider_id, service_type, rating, comment, service_date, feedback_date, verified)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  verified   = VALUES(verified),
  updated_at = CURRENT_TIMESTAMP
`

const upsertCategoryFeedbackSQL = `
INSERT INTO category_feedback (feedback_id, category, rating, comment)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  rating  = VALUES(rating),
  comment = VALUES(comment)
`

const upsertInspectorSQL = `
INSERT INTO inspectors (id, name, specializations)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  name            = VALUES(name),
  specializations = VALUES(specializations)
`

const upsertInspectionSQL = `
INSERT INTO inspections
  (id, provider_id, inspector_id, service_type, scheduled_date, actual_date, status, location, notes, created_date)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  actual_date = VALUES(actual_date),
  status      = VALUES(status),
  notes       = VALUES(notes)
`

const upsertInspectionResultSQL = `
INSERT INTO inspection_results (inspection_id, standard_id, score, notes)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  score = VALUES(score),
  notes = VALUES(notes)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getFeedbackSQL = `
SELECT id, customer_id, provider_id, service_type, rating, comment, service_date, feedback_date, verified
FROM feedback
WHERE id = ?
`

const getCategoryFeedbackSQL = `
SELECT feedback_id, category, rating, comment
FROM category_feedback
WHERE feedback_id = ? AND category = ?
`

// Covered by idx_feedback_provider.
const providerRatingSQL = `
SELECT COALESCE(SUM(rating), 0), COUNT(*)
FROM feedback
WHERE provider_id = ?
`

const getInspectorSQL = `
SELECT id, name, specializations
FROM inspectors
WHERE id = ?
`

const getInspectionSQL = `
SELECT id, provider_id, inspector_id, service_type, scheduled_date, actual_date, status, location, notes, created_date
FROM inspections
WHERE id = ?
`

const getInspectionResultSQL = `
SELECT inspection_id, standard_id, score, notes
FROM inspection_results
WHERE inspection_id = ? AND standard_id = ?
`
