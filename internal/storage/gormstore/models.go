package gormstore

import (
	"time"

	"hotel_pms/internal/domain"
)

type hotelRow struct {
	ID         int64  `gorm:"primaryKey;column:id"`
	Name       string `gorm:"column:name;size:255;not null;default:''"`
	City       string `gorm:"column:city;size:255;not null;default:''"`
	PMS        string `gorm:"column:pms;size:32;not null;uniqueIndex:uq_hotels_pms_hotel,priority:1"`
	PMSHotelID string `gorm:"column:pms_hotel_id;size:64;not null;uniqueIndex:uq_hotels_pms_hotel,priority:2"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (hotelRow) TableName() string { return "hotels" }

type guestRow struct {
	ID        int64   `gorm:"primaryKey;column:id"`
	Name      string  `gorm:"column:name;size:255;not null;default:''"`
	Phone     *string `gorm:"column:phone;size:191;uniqueIndex:uq_guests_phone"` // NULL when unknown
	Language  *string `gorm:"column:language;size:8"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (guestRow) TableName() string { return "guests" }

type stayRow struct {
	ID               int64     `gorm:"primaryKey;column:id"`
	HotelID          int64     `gorm:"column:hotel_id;not null;index"`
	GuestID          int64     `gorm:"column:guest_id;not null;index"`
	PMSReservationID string    `gorm:"column:pms_reservation_id;size:191;not null;uniqueIndex:uq_stays_reservation"`
	PMSGuestID       string    `gorm:"column:pms_guest_id;size:191;not null;default:''"`
	Status           string    `gorm:"column:status;size:16;not null"`
	CheckIn          time.Time `gorm:"column:checkin;type:date"`
	CheckOut         time.Time `gorm:"column:checkout;type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (stayRow) TableName() string { return "stays" }

func toHotel(r hotelRow) domain.Hotel {
	return domain.Hotel{ID: r.ID, Name: r.Name, City: r.City, PMS: r.PMS, PMSHotelID: r.PMSHotelID}
}

func toGuest(r guestRow) domain.Guest {
	g := domain.Guest{ID: r.ID, Name: r.Name}
	if r.Phone != nil {
		g.Phone = *r.Phone
	}
	if r.Language != nil {
		l := domain.Language(*r.Language)
		g.Language = &l
	}
	return g
}

func fromGuest(g domain.Guest) guestRow {
	r := guestRow{ID: g.ID, Name: g.Name}
	if g.Phone != "" {
		p := g.Phone
		r.Phone = &p
	}
	if g.Language != nil {
		s := string(*g.Language)
		r.Language = &s
	}
	return r
}

func toStay(r stayRow) domain.Stay {
	return domain.Stay{
		ID:               r.ID,
		HotelID:          r.HotelID,
		GuestID:          r.GuestID,
		PMSReservationID: r.PMSReservationID,
		PMSGuestID:       r.PMSGuestID,
		Status:           domain.StayStatus(r.Status),
		CheckIn:          r.CheckIn,
		CheckOut:         r.CheckOut,
	}
}
