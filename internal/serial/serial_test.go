package serial

import (
	"bytes"
	"testing"

	"gbcore/internal/addr"
	"gbcore/internal/bus"
	"gbcore/internal/memory"
)

func TestTapForwardsByteAndClearsTransferBit(t *testing.T) {
	b := bus.New()
	mem, _ := memory.Create(0x10)
	if err := b.Plug(mem, 0xFF00, 0xFF0F); err != nil {
		t.Fatalf("plug: %v", err)
	}
	var out bytes.Buffer
	tap := New(b)
	tap.Out = &out

	b.Write(addr.RegSB, 'A')
	b.Write(addr.RegSC, 0x81)
	if err := tap.OnBusWrite(addr.RegSC); err != nil {
		t.Fatalf("OnBusWrite: %v", err)
	}
	if out.String() != "A" {
		t.Fatalf("forwarded bytes = %q want %q", out.String(), "A")
	}
	if b.Read(addr.RegSC)&0x80 != 0 {
		t.Fatalf("transfer-start bit should be cleared after the tap completes")
	}
}

func TestTapIgnoresOtherAddresses(t *testing.T) {
	b := bus.New()
	mem, _ := memory.Create(0x10)
	b.Plug(mem, 0xFF00, 0xFF0F)
	var out bytes.Buffer
	tap := New(b)
	tap.Out = &out
	if err := tap.OnBusWrite(addr.RegSB); err != nil {
		t.Fatalf("OnBusWrite: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("writes to SB alone should not forward anything")
	}
}

func TestTapRingRetainsRecentBytes(t *testing.T) {
	b := bus.New()
	mem, _ := memory.Create(0x10)
	b.Plug(mem, 0xFF00, 0xFF0F)
	tap := New(b)

	for _, ch := range []byte("hi") {
		b.Write(addr.RegSB, ch)
		b.Write(addr.RegSC, 0x81)
		if err := tap.OnBusWrite(addr.RegSC); err != nil {
			t.Fatalf("OnBusWrite: %v", err)
		}
	}
	if got := string(tap.Recent()); got != "hi" {
		t.Fatalf("Recent() = %q want %q", got, "hi")
	}
}
