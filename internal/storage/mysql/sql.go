package mysql

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const getHotelSQL = `
SELECT id, name, city, pms, pms_hotel_id
FROM hotels
WHERE id = ?
`

// Lowest id wins when more than one row matches.
const findHotelByPMSSQL = `
SELECT id, name, city, pms, pms_hotel_id
FROM hotels
WHERE pms = ? AND pms_hotel_id = ?
ORDER BY id
LIMIT 1
`

const insertHotelSQL = `
INSERT INTO hotels (name, city, pms, pms_hotel_id)
VALUES (?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// GUESTS
// -----------------------------------------------------------------------------

const findGuestByPhoneSQL = `
SELECT id, name, phone, language
FROM guests
WHERE phone = ?
`

// Phoneless guests are stored with a NULL phone, outside the unique key.
const findPhonelessGuestSQL = `
SELECT id, name, phone, language
FROM guests
WHERE phone IS NULL
  AND LOWER(TRIM(name)) = LOWER(?)
  AND (language <=> ?)
ORDER BY id
LIMIT 1
`

const insertGuestSQL = `
INSERT INTO guests (name, phone, language)
VALUES (?, ?, ?)
`

const relocateGuestSQL = `
UPDATE guests SET phone = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

const countGuestsSQL = `SELECT COUNT(*) FROM guests`

// -----------------------------------------------------------------------------
// STAYS
// -----------------------------------------------------------------------------

// created_at is kept from the first sighting of the reservation.
const upsertStaySQL = `
INSERT INTO stays
  (hotel_id, guest_id, pms_reservation_id, pms_guest_id, status, checkin, checkout)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hotel_id     = VALUES(hotel_id),
  guest_id     = VALUES(guest_id),
  pms_guest_id = VALUES(pms_guest_id),
  status       = VALUES(status),
  checkin      = VALUES(checkin),
  checkout     = VALUES(checkout),
  updated_at   = CURRENT_TIMESTAMP
`

const getStayByReservationSQL = `
SELECT id, hotel_id, guest_id, pms_reservation_id, pms_guest_id, status, checkin, checkout
FROM stays
WHERE pms_reservation_id = ?
`

const countStaysSQL = `SELECT COUNT(*) FROM stays WHERE (? = 0 OR hotel_id = ?)`
