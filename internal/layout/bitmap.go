package layout

// OccupiedSeats lists the set bits of bitmap below maxSeats, lowest first.
func OccupiedSeats(bitmap, maxSeats uint8) []uint8 {
	if maxSeats > MaxSeats {
		maxSeats = MaxSeats
	}
	seats := make([]uint8, 0, maxSeats)
	for i := uint8(0); i < maxSeats; i++ {
		if SeatSet(bitmap, i) {
			seats = append(seats, i)
		}
	}
	return seats
}

// SeatBitmap is the inverse of OccupiedSeats.
func SeatBitmap(seats []uint8) uint8 {
	var bitmap uint8
	for _, s := range seats {
		if s < MaxSeats {
			bitmap |= 1 << s
		}
	}
	return bitmap
}

// SeatSet reports whether seat's bit is set.
func SeatSet(bitmap, seat uint8) bool {
	return seat < MaxSeats && bitmap&(1<<seat) != 0
}

func seatMask(maxSeats uint8) uint8 {
	if maxSeats >= MaxSeats {
		return 0xFF
	}
	return 1<<maxSeats - 1
}
