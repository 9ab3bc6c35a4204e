package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != blank {
				t.Fatalf("GetCell(%d, %d) = %+v, expected blank", x, y, c)
			}
		}
	}
}

func TestScreenSetCell(t *testing.T) {
	s := NewScreen(10, 10)

	s.SetCell(5, 5, 'X', ColorCyan)
	if c := s.GetCell(5, 5); c.Rune != 'X' || c.Color != ColorCyan {
		t.Errorf("GetCell(5, 5) = %+v, expected cyan X", c)
	}
	s.Set(5, 5, 'Y')
	if c := s.GetCell(5, 5); c.Rune != 'Y' || c.Color != ColorDefault {
		t.Errorf("Set() should reset the color, got %+v", c)
	}

	// Out of bounds is silent
	s.SetCell(-1, 0, 'A', ColorRed)
	s.SetCell(100, 0, 'A', ColorRed)
	s.SetCell(0, -1, 'A', ColorRed)
	s.SetCell(0, 100, 'A', ColorRed)

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenDrawTextColor(t *testing.T) {
	s := NewScreen(6, 1)
	s.DrawTextColor(2, 0, "héllo", ColorYellow)

	if got := s.Row(0); got != "  héll" {
		t.Errorf("Row(0) = %q, expected clipped text", got)
	}
	if c := s.GetCell(3, 0); c.Rune != 'é' || c.Color != ColorYellow {
		t.Errorf("GetCell(3, 0) = %+v, expected yellow é", c)
	}
}

func TestScreenDrawTextCentered(t *testing.T) {
	s := NewScreen(20, 5)
	s.DrawTextCentered(2, "Hi", ColorDefault)

	x := (20 - 2) / 2
	if s.Get(x, 2) != 'H' || s.Get(x+1, 2) != 'i' {
		t.Errorf("DrawTextCentered failed, text not at expected position")
	}
}

func TestScreenDrawRect(t *testing.T) {
	s := NewScreen(10, 10)
	s.DrawRect(NewRect(2, 2, 3, 3), '#', ColorGreen)

	for y := 2; y < 5; y++ {
		for x := 2; x < 5; x++ {
			if c := s.GetCell(x, y); c.Rune != '#' || c.Color != ColorGreen {
				t.Errorf("DrawRect: expected green '#' at (%d, %d), got %+v", x, y, c)
			}
		}
	}
	if s.Get(1, 1) != ' ' || s.Get(5, 5) != ' ' {
		t.Error("DrawRect should not affect outside area")
	}
}

func TestScreenDrawBox(t *testing.T) {
	s := NewScreen(7, 4)
	s.DrawBox(NewRect(1, 0, 5, 4), ColorGray)

	expected := []string{
		" ┌───┐ ",
		" │   │ ",
		" │   │ ",
		" └───┘ ",
	}
	for y, want := range expected {
		if got := s.Row(y); got != want {
			t.Errorf("Row(%d) = %q, expected %q", y, got, want)
		}
	}
}

func TestScreenLines(t *testing.T) {
	s := NewScreen(5, 5)
	s.DrawHLine(1, 0, 3, '-', ColorDefault)
	s.DrawVLine(0, 1, 10, '|', ColorDefault)

	if got := s.Row(0); got != " --- " {
		t.Errorf("Row(0) = %q", got)
	}
	for y := 1; y < 5; y++ {
		if s.Get(0, y) != '|' {
			t.Errorf("Get(0, %d) = %q, expected '|'", y, s.Get(0, y))
		}
	}
}

func TestScreenString(t *testing.T) {
	s := NewScreen(3, 2)
	s.DrawText(0, 0, "abc")
	s.DrawText(0, 1, "de")

	if got := s.String(); got != "abc\nde " {
		t.Errorf("String() = %q, expected %q", got, "abc\nde ")
	}
	if strings.Count(s.String(), "\n") != 1 {
		t.Error("String() should join rows with one newline each")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(4, 4)
	s.Set(0, 0, 'X')
	s.Resize(8, 2)

	if s.Width() != 8 || s.Height() != 2 {
		t.Errorf("Resize() = %dx%d, expected 8x2", s.Width(), s.Height())
	}
	if s.Get(0, 0) != ' ' {
		t.Error("Resize() should clear the buffer")
	}
	if s.Bounds() != NewRect(0, 0, 8, 2) {
		t.Errorf("Bounds() = %+v", s.Bounds())
	}

	s.Resize(-1, -1)
	if s.Width() != 0 || s.Height() != 0 || s.String() != "" {
		t.Error("negative sizes should produce an empty screen")
	}
}

func TestScreenRowOutOfBounds(t *testing.T) {
	s := NewScreen(3, 1)
	if got := s.Row(5); got != "   " {
		t.Errorf("Row(5) = %q, expected blank row", got)
	}
}
