package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"fiscalia/internal/clearance/format"
	"fiscalia/internal/clearance/models"
	"fiscalia/internal/sentinel"
	id "fiscalia/pkg/domain"
)

// Postgres persists clearance records in PostgreSQL. Criminal case entries
// live in a child table and are replaced wholesale on update, matching the
// record's "immutable except through a full update" lifecycle.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed clearance store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const recordColumns = `
	id, or_number, format_type,
	first_name, middle_name, last_name, suffix, alias,
	age, civil_status, nationality, address,
	purpose, purpose_fee, custom_purpose, issued_upon_request_by, receipt_number,
	date_issued, validity_period, validity_expiry,
	case_numbers, crime_description, legal_statute, date_of_commission,
	date_information_filed, court_branch, case_status,
	issued_by_user_id, issued_by_name, updated_by_name,
	status, created_at, updated_at`

// Insert persists a new record plus its criminal case entries in one
// transaction. The or_number unique constraint is the final arbiter under
// concurrent creates.
func (s *Postgres) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert clearance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO clearance_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)
	`
	if _, err := tx.ExecContext(ctx, query, recordArgs(record)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("O.R. number must be unique: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert clearance: %w", err)
	}

	if err := insertCases(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert clearance: %w", err)
	}
	return nil
}

// Update replaces an existing record and its case entries.
func (s *Postgres) Update(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update clearance: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		UPDATE clearance_records SET
			format_type = $3,
			first_name = $4, middle_name = $5, last_name = $6, suffix = $7, alias = $8,
			age = $9, civil_status = $10, nationality = $11, address = $12,
			purpose = $13, purpose_fee = $14, custom_purpose = $15,
			issued_upon_request_by = $16, receipt_number = $17,
			date_issued = $18, validity_period = $19, validity_expiry = $20,
			case_numbers = $21, crime_description = $22, legal_statute = $23,
			date_of_commission = $24, date_information_filed = $25,
			court_branch = $26, case_status = $27,
			issued_by_user_id = $28, issued_by_name = $29, updated_by_name = $30,
			status = $31, created_at = $32, updated_at = $33
		WHERE id = $1
	`
	res, err := tx.ExecContext(ctx, query, recordArgs(record)...)
	if err != nil {
		return fmt.Errorf("update clearance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update clearance rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM criminal_cases WHERE clearance_id = $1`, uuid.UUID(record.ID)); err != nil {
		return fmt.Errorf("clear criminal cases: %w", err)
	}
	if err := insertCases(ctx, tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update clearance: %w", err)
	}
	return nil
}

// FindByID retrieves a record and its criminal case entries.
func (s *Postgres) FindByID(ctx context.Context, clearanceID id.ClearanceID) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM clearance_records WHERE id = $1`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, uuid.UUID(clearanceID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find clearance by id: %w", err)
	}
	if err := s.attachCases(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record; criminal case entries cascade.
func (s *Postgres) Delete(ctx context.Context, clearanceID id.ClearanceID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clearance_records WHERE id = $1`, uuid.UUID(clearanceID))
	if err != nil {
		return fmt.Errorf("delete clearance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete clearance rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns all records, newest first, with case entries attached.
func (s *Postgres) List(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM clearance_records ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list clearances: %w", err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clearance: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clearances: %w", err)
	}
	for _, record := range records {
		if err := s.attachCases(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// ListIssuers returns the distinct users who have issued clearances.
func (s *Postgres) ListIssuers(ctx context.Context) ([]models.Issuer, error) {
	query := `
		SELECT DISTINCT issued_by_user_id, issued_by_name
		FROM clearance_records
		ORDER BY issued_by_name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list issuers: %w", err)
	}
	defer rows.Close()

	var issuers []models.Issuer
	for rows.Next() {
		var userID uuid.UUID
		var name string
		if err := rows.Scan(&userID, &name); err != nil {
			return nil, fmt.Errorf("scan issuer: %w", err)
		}
		issuers = append(issuers, models.Issuer{ID: id.UserID(userID), Name: name})
	}
	return issuers, rows.Err()
}

// ORNumberExists reports whether an O.R. number is already taken.
func (s *Postgres) ORNumberExists(ctx context.Context, orNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM clearance_records WHERE or_number = $1)`
	if err := s.db.QueryRowContext(ctx, query, orNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("check or_number: %w", err)
	}
	return exists, nil
}

// Count returns the total number of records.
func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clearance_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clearances: %w", err)
	}
	return count, nil
}

// CountValid returns the number of records whose validity window covers asOf.
func (s *Postgres) CountValid(ctx context.Context, asOf time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM clearance_records WHERE validity_expiry >= $1`
	if err := s.db.QueryRowContext(ctx, query, asOf).Scan(&count); err != nil {
		return 0, fmt.Errorf("count valid clearances: %w", err)
	}
	return count, nil
}

// CountByFormat returns record counts grouped by certificate format.
func (s *Postgres) CountByFormat(ctx context.Context) (map[format.Code]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT format_type, COUNT(*) FROM clearance_records GROUP BY format_type`)
	if err != nil {
		return nil, fmt.Errorf("count by format: %w", err)
	}
	defer rows.Close()

	counts := make(map[format.Code]int)
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan format count: %w", err)
		}
		counts[format.Code(code)] = count
	}
	return counts, rows.Err()
}

func insertCases(ctx context.Context, tx *sql.Tx, record *models.Record) error {
	query := `
		INSERT INTO criminal_cases (clearance_id, position, case_number, crime_description, date_information_filed, origin, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, entry := range record.CriminalCases {
		if _, err := tx.ExecContext(ctx, query,
			uuid.UUID(record.ID), i,
			entry.CaseNumber, entry.CrimeDescription, entry.DateInformationFiled, entry.Origin, entry.Status,
		); err != nil {
			return fmt.Errorf("insert criminal case: %w", err)
		}
	}
	return nil
}

func (s *Postgres) attachCases(ctx context.Context, record *models.Record) error {
	query := `
		SELECT case_number, crime_description, date_information_filed, origin, status
		FROM criminal_cases
		WHERE clearance_id = $1
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(record.ID))
	if err != nil {
		return fmt.Errorf("load criminal cases: %w", err)
	}
	defer rows.Close()

	record.CriminalCases = nil
	for rows.Next() {
		var entry models.CriminalCaseEntry
		if err := rows.Scan(&entry.CaseNumber, &entry.CrimeDescription, &entry.DateInformationFiled, &entry.Origin, &entry.Status); err != nil {
			return fmt.Errorf("scan criminal case: %w", err)
		}
		record.CriminalCases = append(record.CriminalCases, entry)
	}
	return rows.Err()
}

func recordArgs(record *models.Record) []any {
	return []any{
		uuid.UUID(record.ID),
		record.ORNumber,
		string(record.FormatCode),
		record.FirstName, record.MiddleName, record.LastName, record.Suffix, record.Alias,
		record.Age, record.CivilStatus, record.Nationality, record.Address,
		record.Purpose, record.PurposeFee, record.CustomPurpose,
		record.IssuedUponRequestBy, record.ReceiptNumber,
		record.DateIssued, string(record.ValidityPeriod), record.ValidityExpiry,
		record.CaseNumbers, record.CrimeDescription, record.LegalStatute, record.DateOfCommission,
		record.DateInformationFiled, record.CourtBranch, record.CaseStatus,
		uuid.UUID(record.IssuedByUserID), record.IssuedByName, record.UpdatedByName,
		string(record.Status), record.CreatedAt, record.UpdatedAt,
	}
}

type recordRow interface {
	Scan(dest ...any) error
}

func scanRecord(row recordRow) (*models.Record, error) {
	var record models.Record
	var recordID, issuedBy uuid.UUID
	var formatCode, period, status string
	if err := row.Scan(
		&recordID,
		&record.ORNumber,
		&formatCode,
		&record.FirstName, &record.MiddleName, &record.LastName, &record.Suffix, &record.Alias,
		&record.Age, &record.CivilStatus, &record.Nationality, &record.Address,
		&record.Purpose, &record.PurposeFee, &record.CustomPurpose,
		&record.IssuedUponRequestBy, &record.ReceiptNumber,
		&record.DateIssued, &period, &record.ValidityExpiry,
		&record.CaseNumbers, &record.CrimeDescription, &record.LegalStatute, &record.DateOfCommission,
		&record.DateInformationFiled, &record.CourtBranch, &record.CaseStatus,
		&issuedBy, &record.IssuedByName, &record.UpdatedByName,
		&status, &record.CreatedAt, &record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	record.ID = id.ClearanceID(recordID)
	record.FormatCode = format.Code(formatCode)
	record.ValidityPeriod = models.ValidityPeriod(period)
	record.IssuedByUserID = id.UserID(issuedBy)
	record.Status = models.Status(status)
	return &record, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
