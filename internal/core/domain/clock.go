package domain

// Clock supplies the current calendar day (YYYY-MM-DD) in the device's local timezone.
type Clock interface {
	Today() string
}
