// Package gormstore persists hotels, guests and stays through gorm, for
// postgres and sqlite deployments.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"hotel_pms/internal/domain"
)

// Supports reports whether dsn is a postgres or sqlite DSN.
func Supports(dsn string) bool {
	for _, p := range []string{"postgres://", "postgresql://", "sqlite:", "file:"} {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return false
}

// Open connects by DSN prefix: postgres:// or postgresql:// for PostgreSQL,
// sqlite:<dsn> or file:<dsn> for the pure-Go SQLite driver.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true, Logger: logger.Default.LogMode(logger.Silent)}
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return gorm.Open(postgres.Open(dsn), cfg)
	case strings.HasPrefix(dsn, "sqlite:"):
		return openSQLite(strings.TrimPrefix(dsn, "sqlite:"), cfg)
	case strings.HasPrefix(dsn, "file:"):
		return openSQLite(dsn, cfg)
	}
	return nil, fmt.Errorf("gormstore: unsupported dsn %q", dsn)
}

func openSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	return gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}), cfg)
}

type Store struct{ db *gorm.DB }

func New(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&hotelRow{}, &guestRow{}, &stayRow{})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---- hotels ----

func (s *Store) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var row hotelRow
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return domain.Hotel{}, translate(err)
	}
	return toHotel(row), nil
}

// FindHotelByPMSID takes the lowest id when several rows match.
func (s *Store) FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (domain.Hotel, error) {
	var row hotelRow
	err := s.db.WithContext(ctx).
		Where("pms = ? AND pms_hotel_id = ?", pms, pmsHotelID).
		Order("id").
		First(&row).Error
	if err != nil {
		return domain.Hotel{}, translate(err)
	}
	return toHotel(row), nil
}

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	row := hotelRow{Name: h.Name, City: h.City, PMS: h.PMS, PMSHotelID: h.PMSHotelID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Hotel{}, translate(err)
	}
	return toHotel(row), nil
}

// ---- guests ----

func (s *Store) FindGuestByPhone(ctx context.Context, phone string) (domain.Guest, error) {
	var row guestRow
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&row).Error; err != nil {
		return domain.Guest{}, translate(err)
	}
	return toGuest(row), nil
}

func (s *Store) FindPhonelessGuest(ctx context.Context, name string, lang *domain.Language) (domain.Guest, error) {
	q := s.db.WithContext(ctx).
		Where("phone IS NULL AND LOWER(TRIM(name)) = LOWER(?)", strings.TrimSpace(name))
	if lang == nil {
		q = q.Where("language IS NULL")
	} else {
		q = q.Where("language = ?", string(*lang))
	}
	var row guestRow
	if err := q.Order("id").First(&row).Error; err != nil {
		return domain.Guest{}, translate(err)
	}
	return toGuest(row), nil
}

func (s *Store) CreateGuest(ctx context.Context, g domain.Guest) (domain.Guest, error) {
	return createGuest(s.db.WithContext(ctx), g)
}

func createGuest(tx *gorm.DB, g domain.Guest) (domain.Guest, error) {
	row := fromGuest(g)
	row.ID = 0
	if err := tx.Create(&row).Error; err != nil {
		return domain.Guest{}, translate(err)
	}
	return toGuest(row), nil
}

func (s *Store) RelocateGuest(ctx context.Context, id int64, newPhone string, newcomer domain.Guest) (domain.Guest, error) {
	var out domain.Guest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&guestRow{}).Where("id = ?", id).
			Updates(map[string]any{"phone": newPhone, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("relocate guest %d: %w", id, domain.ErrNotFound)
		}
		g, err := createGuest(tx, newcomer)
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return domain.Guest{}, err
	}
	return out, nil
}

func (s *Store) CountGuests(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&guestRow{}).Count(&n).Error
	return n, err
}

// ---- stays ----

// UpsertStay inserts or overwrites the stay keyed by its reservation id in a
// single statement.
func (s *Store) UpsertStay(ctx context.Context, st domain.Stay) (domain.Stay, error) {
	row := stayRow{
		HotelID:          st.HotelID,
		GuestID:          st.GuestID,
		PMSReservationID: st.PMSReservationID,
		PMSGuestID:       st.PMSGuestID,
		Status:           string(st.Status),
		CheckIn:          st.CheckIn,
		CheckOut:         st.CheckOut,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pms_reservation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hotel_id", "guest_id", "pms_guest_id", "status", "checkin", "checkout", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return domain.Stay{}, translate(err)
	}
	return s.GetStayByReservation(ctx, st.PMSReservationID)
}

func (s *Store) GetStayByReservation(ctx context.Context, pmsReservationID string) (domain.Stay, error) {
	var row stayRow
	if err := s.db.WithContext(ctx).Where("pms_reservation_id = ?", pmsReservationID).First(&row).Error; err != nil {
		return domain.Stay{}, translate(err)
	}
	return toStay(row), nil
}

// CountStays counts stays of hotelID, or of all hotels when hotelID is 0.
func (s *Store) CountStays(ctx context.Context, hotelID int64) (int64, error) {
	q := s.db.WithContext(ctx).Model(&stayRow{})
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	// the pure-Go sqlite driver is not covered by gorm's error translator
	if low := strings.ToLower(err.Error()); strings.Contains(low, "unique constraint") || strings.Contains(low, "duplicate key") {
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	}
	return err
}
