package core

// Display is the operator feedback sink (a 16x2 character LCD on the
// instrument). It is write-only: nothing in the control logic depends on it.
type Display interface {
	Clear()
	SetCursor(col, row uint8)
	Print(s string)
}

// Title2 clears the display and writes one line per row. Convenience used
// by the process machines for status screens.
func Title2(d Display, line1, line2 string) {
	d.Clear()
	d.SetCursor(0, 0)
	d.Print(line1)
	d.SetCursor(0, 1)
	d.Print(line2)
}
