package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dopaj/field-service/internal/domain"
)

const (
	photoSlotEvidence = "evidence"
	photoSlotReport   = "report"
)

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the postgres-backed ticket store.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, folio, report_folio, serial_number, model, client_name,
        responsible_person, phone, description, engineer_id, engineer_name,
        assigned_at, attended_at, status, failure_located, solution_applied,
        observations, service_sheet_url, closure_latitude, closure_longitude,
        closure_timestamp, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, folio, report_folio, serial_number, model, client_name,
            responsible_person, phone, description, engineer_id, engineer_name,
            assigned_at, attended_at, status, failure_located, solution_applied,
            observations, service_sheet_url, closure_latitude, closure_longitude,
            closure_timestamp)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING created_at, updated_at`
	lat, lon, ts := geoColumns(ticket.ClosureLocation)
	if err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Folio,
		ticket.ReportFolio,
		ticket.SerialNumber,
		ticket.Model,
		ticket.ClientName,
		ticket.ResponsiblePerson,
		ticket.Phone,
		ticket.Description,
		ticket.EngineerID,
		ticket.EngineerName,
		ticket.AssignedAt,
		ticket.AttendedAt,
		ticket.Status,
		ticket.FailureLocated,
		ticket.SolutionApplied,
		ticket.Observations,
		ticket.ServiceSheetURL,
		lat, lon, ts,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}
	return r.savePhotos(ctx, ticket)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET report_folio=$1, serial_number=$2, model=$3, client_name=$4,
            responsible_person=$5, phone=$6, description=$7, engineer_id=$8,
            engineer_name=$9, attended_at=$10, status=$11, failure_located=$12,
            solution_applied=$13, observations=$14, service_sheet_url=$15,
            closure_latitude=$16, closure_longitude=$17, closure_timestamp=$18,
            updated_at=NOW()
        WHERE id=$19`
	lat, lon, ts := geoColumns(ticket.ClosureLocation)
	cmd, err := r.pool.Exec(ctx, query,
		ticket.ReportFolio,
		ticket.SerialNumber,
		ticket.Model,
		ticket.ClientName,
		ticket.ResponsiblePerson,
		ticket.Phone,
		ticket.Description,
		ticket.EngineerID,
		ticket.EngineerName,
		ticket.AttendedAt,
		ticket.Status,
		ticket.FailureLocated,
		ticket.SolutionApplied,
		ticket.Observations,
		ticket.ServiceSheetURL,
		lat, lon, ts,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return r.savePhotos(ctx, ticket)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByFolio(ctx context.Context, folio string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE folio=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, folio)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.EngineerID != nil {
		args = append(args, *filter.EngineerID)
		clauses = append(clauses, fmt.Sprintf("engineer_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range tickets {
		if err := r.loadPhotos(ctx, &tickets[i]); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadPhotos(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket        domain.Ticket
		lat, lon      *float64
		closureTime   *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Folio,
		&ticket.ReportFolio,
		&ticket.SerialNumber,
		&ticket.Model,
		&ticket.ClientName,
		&ticket.ResponsiblePerson,
		&ticket.Phone,
		&ticket.Description,
		&ticket.EngineerID,
		&ticket.EngineerName,
		&ticket.AssignedAt,
		&ticket.AttendedAt,
		&ticket.Status,
		&ticket.FailureLocated,
		&ticket.SolutionApplied,
		&ticket.Observations,
		&ticket.ServiceSheetURL,
		&lat, &lon, &closureTime,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if lat != nil && lon != nil && closureTime != nil {
		ticket.ClosureLocation = &domain.GeoPoint{Latitude: *lat, Longitude: *lon, Timestamp: *closureTime}
	}
	return &ticket, nil
}

// savePhotos replaces the photo rows wholesale, mirroring the full-record
// replacement semantics of Update.
func (r *ticketRepository) savePhotos(ctx context.Context, ticket *domain.Ticket) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM ticket_photos WHERE ticket_id=$1`, ticket.ID); err != nil {
		return err
	}
	const insert = `
        INSERT INTO ticket_photos (id, ticket_id, slot, position, file_name, mime_type, data, uploaded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	for i, photo := range ticket.EvidencePhotos {
		if _, err := r.pool.Exec(ctx, insert,
			uuid.NewString(), ticket.ID, photoSlotEvidence, i,
			photo.FileName, photo.MimeType, photo.Data, photo.UploadedAt,
		); err != nil {
			return err
		}
	}
	if ticket.ReportEvidence != nil {
		if _, err := r.pool.Exec(ctx, insert,
			uuid.NewString(), ticket.ID, photoSlotReport, 0,
			ticket.ReportEvidence.FileName, ticket.ReportEvidence.MimeType,
			ticket.ReportEvidence.Data, ticket.ReportEvidence.UploadedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketRepository) loadPhotos(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        SELECT slot, file_name, mime_type, data, uploaded_at
        FROM ticket_photos WHERE ticket_id=$1 ORDER BY slot, position`
	rows, err := r.pool.Query(ctx, query, ticket.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	ticket.EvidencePhotos = nil
	ticket.ReportEvidence = nil
	for rows.Next() {
		var (
			slot  string
			photo domain.EvidencePhoto
		)
		if err := rows.Scan(&slot, &photo.FileName, &photo.MimeType, &photo.Data, &photo.UploadedAt); err != nil {
			return err
		}
		if slot == photoSlotReport {
			p := photo
			ticket.ReportEvidence = &p
		} else {
			ticket.EvidencePhotos = append(ticket.EvidencePhotos, photo)
		}
	}
	return rows.Err()
}

func geoColumns(g *domain.GeoPoint) (lat, lon *float64, ts *time.Time) {
	if g == nil {
		return nil, nil, nil
	}
	return &g.Latitude, &g.Longitude, &g.Timestamp
}
