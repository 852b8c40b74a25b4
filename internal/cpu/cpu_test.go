package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilecore/gbcore/internal/bus"
	"github.com/tilecore/gbcore/internal/cart"
	"github.com/tilecore/gbcore/internal/ppu"
)

// newTestCPU wires a CPU to a real bus/ppu/cart stack loaded with program,
// starting execution at 0x0100 (boot overlay already unmapped) so tests can
// write ordinary instruction streams without fighting the boot ROM.
func newTestCPU(t *testing.T, program []byte) (*CPU, *bus.Bus) {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)
	b := bus.New(cart.NewROMOnly(rom), ppu.New())
	b.WriteByte(0xFF50, 1) // disable boot overlay
	c := New(b)
	c.PC = 0x0100
	c.SP = 0xFFFE
	return c, b
}

func stepN(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

// Scenario 1: LD A,0x3A; LD B,0x05; ADD A,B -> A=0x3F, F all clear.
func TestScenarioAddNoFlags(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x3E, 0x3A, 0x06, 0x05, 0x80})
	stepN(c, 3)
	assert.Equal(t, byte(0x3F), c.A)
	assert.Equal(t, byte(0x00), c.F)
}

// Scenario 2: LD A,0x0F; INC A -> A=0x10, H set, Z/N clear, C preserved.
func TestScenarioIncHalfCarry(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x3E, 0x0F, 0x3C})
	c.F = 0x10 // pre-set carry to verify INC leaves it untouched
	stepN(c, 2)
	assert.Equal(t, byte(0x10), c.A)
	assert.True(t, c.Flag(flagBit(t, "H")))
	assert.False(t, c.Flag(flagBit(t, "Z")))
	assert.False(t, c.Flag(flagBit(t, "N")))
	assert.True(t, c.Flag(flagBit(t, "C")), "carry must be preserved across INC")
}

// Scenario 3: LD A,0x80; ADD A,0x80 -> A=0x00, Z and C set, H and N clear.
func TestScenarioAddOverflow(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x3E, 0x80, 0xC6, 0x80})
	stepN(c, 2)
	if c.A != 0 {
		t.Fatalf("A = %#02x, want 0", c.A)
	}
	if c.F != 0x90 { // Z and C set
		t.Fatalf("F = %#02x, want 0x90", c.F)
	}
}

// Scenario 4: LD HL,0xFFFE; LD SP,HL; LD BC,0x1234; PUSH BC; POP DE ->
// SP=0xFFFE, DE=0x1234.
func TestScenarioPushPopDuality(t *testing.T) {
	c, _ := newTestCPU(t, []byte{
		0x21, 0xFE, 0xFF, // LD HL,0xFFFE
		0xF9,             // LD SP,HL
		0x01, 0x34, 0x12, // LD BC,0x1234
		0xC5, // PUSH BC
		0xD1, // POP DE
	})
	stepN(c, 5)
	require.Equal(t, uint16(0xFFFE), c.SP)
	require.Equal(t, uint16(0x1234), c.DE())
}

// Scenario 5: LD A,0x10; SWAP A -> A=0x01, F=0.
func TestScenarioSwapIsNibbleSwap(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x3E, 0x10, 0xCB, 0x37})
	stepN(c, 2)
	assert.Equal(t, byte(0x01), c.A)
	assert.Equal(t, byte(0x00), c.F)
}

// DAA law: after ADD A,B; DAA, A is the BCD sum mod 100 with carry set iff
// the true sum is >= 100.
func TestDAALawCarryOnOverflow(t *testing.T) {
	c, _ := newTestCPU(t, []byte{
		0x3E, 0x58, // LD A,0x58 (BCD 58)
		0x06, 0x46, // LD B,0x46 (BCD 46)
		0x80, // ADD A,B -> raw 0x9E
		0x27, // DAA -> BCD 104 mod 100 = 04, carry set
	})
	stepN(c, 4)
	assert.Equal(t, byte(0x04), c.A)
	assert.True(t, c.Flag(flagBit(t, "C")))
}

func TestDAALawNoCarryWithinRange(t *testing.T) {
	c, _ := newTestCPU(t, []byte{
		0x3E, 0x15, // BCD 15
		0x06, 0x27, // BCD 27
		0x80, // ADD -> 0x3C
		0x27, // DAA -> BCD 42
	})
	stepN(c, 4)
	assert.Equal(t, byte(0x42), c.A)
	assert.False(t, c.Flag(flagBit(t, "C")))
}

// Every instruction's last clock must satisfy T == 4*M.
func TestLastClockTIsFourTimesM(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x00, 0x3E, 0x01, 0xCD, 0x00, 0x01})
	for i := 0; i < 3; i++ {
		clk := c.Step()
		if clk.T != 4*clk.M {
			t.Fatalf("step %d: T=%d M=%d, want T==4M", i, clk.T, clk.M)
		}
	}
}

// After any instruction F's low nibble is zero.
func TestFlagLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x3E, 0xFF, 0x3C, 0xB7, 0x2F})
	for i := 0; i < 4; i++ {
		c.Step()
		if c.F&0x0F != 0 {
			t.Fatalf("step %d: F low nibble not zero: %#02x", i, c.F)
		}
	}
}

// AF round trip: write_word(AF,v); read_word(AF) == v & 0xFFF0.
func TestAFRoundTripMasksLowNibble(t *testing.T) {
	c, _ := newTestCPU(t, nil)
	c.SetAF(0xABCD)
	require.Equal(t, uint16(0xABC0), c.AF())
}

// Word access round trip for writable RAM.
func TestMemoryWordRoundTrip(t *testing.T) {
	_, b := newTestCPU(t, nil)
	b.WriteWord(0xC050, 0xBEEF)
	require.Equal(t, uint16(0xBEEF), b.ReadWord(0xC050))
}

// Interrupt service: with IME set and a pending V-Blank, Step pushes PC,
// jumps to 0x40, and clears the IF bit and IME.
func TestInterruptServiceRoutine(t *testing.T) {
	c, b := newTestCPU(t, []byte{0x00, 0x00, 0x00})
	c.PC = 0x0150
	c.SP = 0xFFF0
	c.IME = true
	b.WriteByte(0xFFFF, 1<<bus.VBlank.Bit())
	b.SetInterrupt(bus.VBlank, true)

	clk := c.Step()

	require.Equal(t, uint16(0x0040), c.PC)
	require.False(t, c.IME)
	require.Equal(t, Clock{T: 16, M: 4}, clk)
	if _, pending := b.PendingInterrupt(); pending {
		t.Fatalf("expected IF cleared after service")
	}
	require.Equal(t, uint16(0x0150), b.ReadWord(c.SP))
}

func TestInterruptNotServicedWhenIMEClear(t *testing.T) {
	c, b := newTestCPU(t, []byte{0x00})
	c.IME = false
	b.WriteByte(0xFFFF, 1<<bus.VBlank.Bit())
	b.SetInterrupt(bus.VBlank, true)

	c.Step()
	require.Equal(t, uint16(0x0101), c.PC) // NOP executed normally
}

// EI takes effect only after the instruction following it has executed.
func TestEIDelaysOneInstruction(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0xFB, 0x00, 0x00})
	c.IME = false
	c.Step() // EI itself
	require.False(t, c.IME, "IME must not be set during EI's own step")
	c.Step() // the instruction immediately following EI
	require.False(t, c.IME, "IME must not be set until after the following instruction")
	c.Step() // the instruction after that
	require.True(t, c.IME)
}

func TestUnknownOpcodeWarnsAndActsAsNOP(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0xFC}) // 0xFC is undefined on LR35902
	startPC := c.PC
	clk := c.Step()
	require.Equal(t, 4, clk.T)
	require.Equal(t, startPC+1, c.PC)
}

func TestJRConditionalCostsDifferTakenVsUntaken(t *testing.T) {
	c, _ := newTestCPU(t, []byte{0x20, 0x02}) // JR NZ,+2
	c.F = 0                                   // Z clear -> taken
	clk := c.Step()
	require.Equal(t, 12, clk.T)

	c2, _ := newTestCPU(t, []byte{0x20, 0x02})
	c2.SetFlag(flagBit(t, "Z"), true) // Z set -> not taken
	clk2 := c2.Step()
	require.Equal(t, 8, clk2.T)
}

// flagBit is a small indirection so the test file doesn't need to import
// the registers package just to name a flag bit in assertions.
func flagBit(t *testing.T, name string) byte {
	t.Helper()
	switch name {
	case "Z":
		return 1 << 7
	case "N":
		return 1 << 6
	case "H":
		return 1 << 5
	case "C":
		return 1 << 4
	default:
		t.Fatalf("unknown flag name %q", name)
		return 0
	}
}
