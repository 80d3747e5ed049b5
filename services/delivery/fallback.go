package delivery

import (
	"time"
)

const maxEstimatedDays = 7

// Fixed national holidays (month/day) that add padding to an estimate.
var holidays = map[[2]int]bool{
	{1, 1}:   true, // New Year's Day
	{1, 26}:  true, // Republic Day
	{8, 15}:  true, // Independence Day
	{10, 2}:  true, // Gandhi Jayanti
	{12, 25}: true, // Christmas
}

// estimateDays derives a deterministic day-count from the numeric distance
// between the first two digits of both pincodes, padded for Sundays and
// holidays falling within the travel window, capped at maxEstimatedDays.
func estimateDays(originPincode string, destinationPincode string, now time.Time) int {
	distance := regionDistance(originPincode, destinationPincode)

	var days int
	switch {
	case distance == 0:
		days = 1
	case distance <= 5:
		days = 2
	case distance <= 15:
		days = 3
	default:
		days = 5
	}

	padding := 0
	for i := 1; i <= days; i++ {
		day := now.AddDate(0, 0, i)
		if isNonDeliveryDay(day) {
			padding++
		}
	}

	days += padding
	if days > maxEstimatedDays {
		days = maxEstimatedDays
	}

	return days
}

// estimateDate turns a day-count into a delivery date, shifting one day
// forward when the arrival would land on a non-delivery Sunday.
func estimateDate(now time.Time, days int) time.Time {
	date := now.AddDate(0, 0, days)
	if date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, 1)
	}
	return date
}

func regionDistance(originPincode string, destinationPincode string) int {
	origin := regionOf(originPincode)
	destination := regionOf(destinationPincode)

	distance := origin - destination
	if distance < 0 {
		distance = -distance
	}
	return distance
}

// regionOf interprets the first two digits as a postal region number.
func regionOf(pincode string) int {
	if len(pincode) < 2 {
		return 0
	}
	return int(pincode[0]-'0')*10 + int(pincode[1]-'0')
}

func isNonDeliveryDay(day time.Time) bool {
	if day.Weekday() == time.Sunday {
		return true
	}
	return holidays[[2]int{int(day.Month()), day.Day()}]
}
