package sessions

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rlane/wherewasi/internal/db"
	"github.com/rlane/wherewasi/pkg/models"
)

// Store answers per-session questions straight from the transcript files,
// using DuckDB's JSON reader to query the whole tree in one pass. It is
// used by the show subcommand; the report path never needs it.
type Store struct {
	glob string
}

// NewStore creates a store over all transcripts under the projects root.
func NewStore(root string) *Store {
	return &Store{glob: filepath.Join(root, "**", "*.jsonl")}
}

// readJSON is the FROM clause shared by every query.
func (s *Store) readJSON() string {
	return fmt.Sprintf(`read_json('%s',
		format = 'newline_delimited',
		union_by_name = true,
		filename = true
	)`, s.glob)
}

// SessionsForProject returns the sessions recorded for a project working
// directory, most recent first, with summaries resolved in batch.
func (s *Store) SessionsForProject(projectPath string) ([]models.Session, error) {
	return s.querySessions("cwd = ?", projectPath, projectPath)
}

// SessionsForDirectory matches transcripts by their storage directory, for
// projects whose events never recorded a working directory. Without it
// those projects would show up in the report but drill down to nothing.
func (s *Store) SessionsForDirectory(dir string) ([]models.Session, error) {
	return s.querySessions("(cwd IS NULL OR cwd = '') AND filename LIKE ?", directoryPattern(dir), dir)
}

// directoryPattern is the LIKE pattern matching every transcript directly
// under dir.
func directoryPattern(dir string) string {
	return filepath.Join(dir, "%")
}

func (s *Store) querySessions(where string, arg interface{}, projectPath string) ([]models.Session, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}

	// A session whose first event carries a parentUuid was resumed from
	// an earlier one, so the earliest parented event must be the
	// earliest event overall.
	query := fmt.Sprintf(`
		SELECT
			CAST(sessionId AS VARCHAR) as session_id,
			MAX(timestamp) as last_activity,
			COALESCE(MIN(timestamp) FILTER (WHERE parentUuid IS NOT NULL) = MIN(timestamp), false) as resumed
		FROM %s
		WHERE sessionId IS NOT NULL
		AND %s
		GROUP BY sessionId
		ORDER BY MAX(timestamp) DESC
		LIMIT 100
	`, s.readJSON(), where)

	rows, err := database.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sessions query: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	var sessionIDs []string
	for rows.Next() {
		var sess models.Session
		var lastActivity sql.NullString
		if err := rows.Scan(&sess.ID, &lastActivity, &sess.Resumed); err != nil {
			continue
		}
		sess.ProjectPath = projectPath
		sess.Modified = parseTimestamp(lastActivity)
		sessions = append(sessions, sess)
		sessionIDs = append(sessionIDs, sess.ID)
	}

	if len(sessionIDs) > 0 {
		summaries := s.batchSummaries(database, sessionIDs)
		for i := range sessions {
			sessions[i].Summary = summaries[sessions[i].ID]
		}
	}

	return sessions, nil
}

// batchSummaries resolves summaries for many sessions at once. Summary
// records point at the last event of a session through leafUuid, so this
// takes two passes: last event uuid per session, then the matching
// summaries. Failures degrade to missing summaries.
func (s *Store) batchSummaries(database *sql.DB, sessionIDs []string) map[string]string {
	summaries := make(map[string]string)

	placeholders := make([]string, len(sessionIDs))
	args := make([]interface{}, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	lastUUIDsQuery := fmt.Sprintf(`
		SELECT
			CAST(sessionId AS VARCHAR) as session_id,
			arg_max(CAST(uuid AS VARCHAR), timestamp) as uuid_str
		FROM %s
		WHERE CAST(sessionId AS VARCHAR) IN (%s)
		AND type <> 'summary'
		GROUP BY sessionId
	`, s.readJSON(), strings.Join(placeholders, ","))

	rows, err := database.Query(lastUUIDsQuery, args...)
	if err != nil {
		return summaries
	}
	defer rows.Close()

	uuidToSession := make(map[string]string)
	for rows.Next() {
		var sessionID, uuid string
		if err := rows.Scan(&sessionID, &uuid); err == nil {
			uuidToSession[uuid] = sessionID
		}
	}
	if len(uuidToSession) == 0 {
		return summaries
	}

	placeholders = placeholders[:0]
	args = args[:0]
	for uuid := range uuidToSession {
		placeholders = append(placeholders, "?")
		args = append(args, uuid)
	}

	summariesQuery := fmt.Sprintf(`
		SELECT
			CAST(leafUuid AS VARCHAR) as leaf_uuid,
			summary
		FROM %s
		WHERE type = 'summary'
		AND CAST(leafUuid AS VARCHAR) IN (%s)
	`, s.readJSON(), strings.Join(placeholders, ","))

	rows2, err := database.Query(summariesQuery, args...)
	if err != nil {
		return summaries
	}
	defer rows2.Close()

	for rows2.Next() {
		var leafUUID, summary string
		if err := rows2.Scan(&leafUUID, &summary); err == nil {
			if sessionID, ok := uuidToSession[leafUUID]; ok {
				summaries[sessionID] = summary
			}
		}
	}

	return summaries
}

// RecentMessages returns the first and last ten user and assistant
// messages of a session with an omission marker in between.
func (s *Store) RecentMessages(sessionID string) ([]string, error) {
	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		WITH all_messages AS (
			SELECT
				type,
				to_json(message) as message_json,
				timestamp,
				ROW_NUMBER() OVER (ORDER BY timestamp ASC) as row_num_asc,
				ROW_NUMBER() OVER (ORDER BY timestamp DESC) as row_num_desc,
				COUNT(*) OVER () as total_count
			FROM %s
			WHERE CAST(sessionId AS VARCHAR) = ?
			AND type IN ('user', 'assistant')
			AND message IS NOT NULL
		)
		SELECT
			type,
			message_json,
			row_num_asc,
			total_count
		FROM all_messages
		WHERE row_num_asc <= 10 OR row_num_desc <= 10
		ORDER BY timestamp ASC
	`, s.readJSON())

	rows, err := database.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute messages query: %w", err)
	}
	defer rows.Close()

	var messages []string
	var totalCount, lastRow int64
	for rows.Next() {
		var messageType, messageJSON sql.NullString
		var rowNum, count sql.NullInt64

		if err := rows.Scan(&messageType, &messageJSON, &rowNum, &count); err != nil {
			continue
		}
		if count.Valid {
			totalCount = count.Int64
		}
		if !messageType.Valid || !messageJSON.Valid || messageJSON.String == "" {
			continue
		}

		// The window query skips the middle of long sessions; mark the
		// gap when the row numbers jump.
		if rowNum.Valid && lastRow > 0 && rowNum.Int64 > lastRow+1 {
			messages = append(messages, fmt.Sprintf("... (%d messages omitted) ...", totalCount-20))
		}
		if rowNum.Valid {
			lastRow = rowNum.Int64
		}

		if formatted := formatMessage(messageType.String, messageJSON.String); formatted != "" {
			messages = append(messages, formatted)
		}
	}

	return messages, nil
}

func parseTimestamp(v sql.NullString) time.Time {
	if v.Valid {
		if t, err := time.Parse(time.RFC3339, v.String); err == nil {
			return t.Local()
		}
	}
	return time.Now()
}
