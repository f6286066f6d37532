package models

import "fmt"

// Money is an amount in minor currency units (cents).
type Money int64

func (m Money) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%d.%02d", sign, int64(m)/100, int64(m)%100)
}

// Times multiplies the amount by a head count.
func (m Money) Times(n int) Money {
	return m * Money(n)
}
