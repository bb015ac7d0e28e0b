package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/turtacn/ClauseWise/internal/domain/report"
	"github.com/turtacn/ClauseWise/internal/infrastructure/database/postgres"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

const reportColumns = `id, document_id, filename, content_hash, status, document_type, confidence,
	clause_types, report, error, created_at, updated_at`

type postgresReportRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresReportRepo returns a report.Repository over the analysis_reports table.
func NewPostgresReportRepo(conn *postgres.Connection, log logging.Logger) report.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresReportRepo{conn: conn, log: log}
}

func (r *postgresReportRepo) executor() queryExecutor {
	return r.conn.DB()
}

func (r *postgresReportRepo) Save(ctx context.Context, s *report.StoredReport) error {
	if err := s.Validate(); err != nil {
		return err
	}
	payload, err := marshalReport(s.Report)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO analysis_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			document_type = EXCLUDED.document_type,
			confidence = EXCLUDED.confidence,
			clause_types = EXCLUDED.clause_types,
			report = EXCLUDED.report,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.executor().ExecContext(ctx, query,
		s.ID, s.DocumentID, s.Filename, s.ContentHash, string(s.Status), string(s.DocumentType), s.Confidence,
		pq.Array(clauseTypes(s.Report)), payload, s.Error, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save report")
	}
	r.log.Debug("report saved",
		logging.String(logging.FieldReportID, s.ID),
		logging.String("status", string(s.Status)))
	return nil
}

func (r *postgresReportRepo) UpdateStatus(ctx context.Context, id string, status report.Status, analysis *legal.AnalysisReport, errMsg string) error {
	var (
		res sql.Result
		err error
	)
	if analysis != nil {
		payload, mErr := marshalReport(analysis)
		if mErr != nil {
			return mErr
		}
		query := `
			UPDATE analysis_reports
			SET status = $2, document_type = $3, confidence = $4, clause_types = $5, report = $6, error = $7, updated_at = NOW()
			WHERE id = $1
		`
		res, err = r.executor().ExecContext(ctx, query, id, string(status),
			string(analysis.DocumentType.Type), analysis.DocumentType.Confidence,
			pq.Array(clauseTypes(analysis)), payload, errMsg)
	} else {
		query := `UPDATE analysis_reports SET status = $2, error = $3, updated_at = NOW() WHERE id = $1`
		res, err = r.executor().ExecContext(ctx, query, id, string(status), errMsg)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update report status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.NotFound(id)
	}
	return nil
}

func (r *postgresReportRepo) FindByID(ctx context.Context, id string) (*report.StoredReport, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports WHERE id = $1`
	s, err := scanReport(r.executor().QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, report.NotFound(id)
	}
	return s, err
}

func (r *postgresReportRepo) FindByHash(ctx context.Context, hash string) (*report.StoredReport, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports
		WHERE content_hash = $1 AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1`
	s, err := scanReport(r.executor().QueryRowContext(ctx, query, hash))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, report.NotFound("with hash " + hash)
	}
	return s, err
}

func (r *postgresReportRepo) List(ctx context.Context, page, size int) ([]*report.StoredReport, int64, error) {
	_, size, offset := report.NormalizePage(page, size)

	var total int64
	if err := r.executor().QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_reports`).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count reports")
	}

	query := `SELECT ` + reportColumns + ` FROM analysis_reports ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.executor().QueryContext(ctx, query, size, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list reports")
	}
	defer rows.Close()

	out := make([]*report.StoredReport, 0, size)
	for rows.Next() {
		s, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate reports")
	}
	return out, total, nil
}

func (r *postgresReportRepo) Delete(ctx context.Context, id string) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM analysis_reports WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete report")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return report.NotFound(id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func scanReport(row scanner) (*report.StoredReport, error) {
	var (
		s       report.StoredReport
		status  string
		docType string
		clauses []string
		payload []byte
	)
	err := row.Scan(&s.ID, &s.DocumentID, &s.Filename, &s.ContentHash, &status, &docType, &s.Confidence,
		pq.Array(&clauses), &payload, &s.Error, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan report")
	}
	s.Status = report.Status(status)
	s.DocumentType = legal.DocumentType(docType)
	if len(payload) > 0 {
		var a legal.AnalysisReport
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode stored report")
		}
		s.Report = &a
	}
	return &s, nil
}

func marshalReport(a *legal.AnalysisReport) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode report")
	}
	return payload, nil
}

// clauseTypes lists the distinct clause labels of a report in first-seen order.
func clauseTypes(a *legal.AnalysisReport) []string {
	out := []string{}
	if a == nil {
		return out
	}
	seen := make(map[legal.ClauseType]bool)
	for _, c := range a.Clauses {
		if !seen[c.Clause.Type] {
			seen[c.Clause.Type] = true
			out = append(out, string(c.Clause.Type))
		}
	}
	return out
}

//Personal.AI order the ending
