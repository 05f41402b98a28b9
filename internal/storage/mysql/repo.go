package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotel_pms/internal/domain"
)

const errDupEntry = 1062

func valLang(l *domain.Language) any {
	if l == nil {
		return nil
	}
	return string(*l)
}

func valPhone(p string) any {
	if p == "" {
		return nil
	}
	return p
}

func valDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- hotels ----

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return scanHotel(r.db.QueryRowContext(ctx, getHotelSQL, id))
}

func (r *Repo) FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (domain.Hotel, error) {
	return scanHotel(r.db.QueryRowContext(ctx, findHotelByPMSSQL, pms, pmsHotelID))
}

func (r *Repo) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	res, err := r.db.ExecContext(ctx, insertHotelSQL, h.Name, h.City, h.PMS, h.PMSHotelID)
	if err != nil {
		return domain.Hotel{}, translate(err)
	}
	if h.ID, err = res.LastInsertId(); err != nil {
		return domain.Hotel{}, err
	}
	return h, nil
}

func scanHotel(row *sql.Row) (domain.Hotel, error) {
	var h domain.Hotel
	if err := row.Scan(&h.ID, &h.Name, &h.City, &h.PMS, &h.PMSHotelID); err != nil {
		return domain.Hotel{}, translate(err)
	}
	return h, nil
}

// ---- guests ----

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repo) FindGuestByPhone(ctx context.Context, phone string) (domain.Guest, error) {
	return scanGuest(r.db.QueryRowContext(ctx, findGuestByPhoneSQL, phone))
}

func (r *Repo) FindPhonelessGuest(ctx context.Context, name string, lang *domain.Language) (domain.Guest, error) {
	return scanGuest(r.db.QueryRowContext(ctx, findPhonelessGuestSQL, strings.TrimSpace(name), valLang(lang)))
}

func scanGuest(row *sql.Row) (domain.Guest, error) {
	var (
		g     domain.Guest
		phone sql.NullString
		lang  sql.NullString
	)
	if err := row.Scan(&g.ID, &g.Name, &phone, &lang); err != nil {
		return domain.Guest{}, translate(err)
	}
	g.Phone = phone.String
	if lang.Valid {
		l := domain.Language(lang.String)
		g.Language = &l
	}
	return g, nil
}

func (r *Repo) CreateGuest(ctx context.Context, g domain.Guest) (domain.Guest, error) {
	return insertGuest(ctx, r.db, g)
}

func insertGuest(ctx context.Context, ex execer, g domain.Guest) (domain.Guest, error) {
	res, err := ex.ExecContext(ctx, insertGuestSQL, g.Name, valPhone(g.Phone), valLang(g.Language))
	if err != nil {
		return domain.Guest{}, translate(err)
	}
	if g.ID, err = res.LastInsertId(); err != nil {
		return domain.Guest{}, err
	}
	return g, nil
}

// RelocateGuest moves guest id to newPhone and inserts newcomer in one transaction.
func (r *Repo) RelocateGuest(ctx context.Context, id int64, newPhone string, newcomer domain.Guest) (domain.Guest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Guest{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	res, err := tx.ExecContext(ctx, relocateGuestSQL, newPhone, id)
	if err != nil {
		return domain.Guest{}, translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Guest{}, fmt.Errorf("relocate guest %d: %w", id, domain.ErrNotFound)
	}
	g, err := insertGuest(ctx, tx, newcomer)
	if err != nil {
		return domain.Guest{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Guest{}, err
	}
	return g, nil
}

func (r *Repo) CountGuests(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countGuestsSQL).Scan(&n)
	return n, err
}

// ---- stays ----

func (r *Repo) UpsertStay(ctx context.Context, s domain.Stay) (domain.Stay, error) {
	_, err := r.db.ExecContext(ctx, upsertStaySQL,
		s.HotelID,
		s.GuestID,
		s.PMSReservationID,
		s.PMSGuestID,
		string(s.Status),
		valDate(s.CheckIn),
		valDate(s.CheckOut),
	)
	if err != nil {
		return domain.Stay{}, translate(err)
	}
	return r.GetStayByReservation(ctx, s.PMSReservationID)
}

func (r *Repo) GetStayByReservation(ctx context.Context, pmsReservationID string) (domain.Stay, error) {
	var (
		s                 domain.Stay
		status            string
		checkIn, checkOut sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, getStayByReservationSQL, pmsReservationID).Scan(
		&s.ID, &s.HotelID, &s.GuestID, &s.PMSReservationID, &s.PMSGuestID, &status, &checkIn, &checkOut,
	)
	if err != nil {
		return domain.Stay{}, translate(err)
	}
	s.Status = domain.StayStatus(status)
	if checkIn.Valid {
		s.CheckIn = checkIn.Time
	}
	if checkOut.Valid {
		s.CheckOut = checkOut.Time
	}
	return s, nil
}

func (r *Repo) CountStays(ctx context.Context, hotelID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countStaysSQL, hotelID, hotelID).Scan(&n)
	return n, err
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, me.Message)
	}
	return err
}
