package emu

// virtio.go is the legacy-MMIO virtio-blk device: register file (§4.2,
// §6) plus the disk_access DMA engine invoked on queue-notify (§4.9).

import "encoding/binary"

const VirtioIRQNumber = 1
const virtioIRQ = Word(VirtioIRQNumber)

const (
	VirtioMagic    Word = 0x74726976
	VirtioVersion  Word = 1
	VirtioDeviceID Word = 2
	VirtioVendorID Word = 0x554d_4551
)

// Register offsets from VirtioBase.
const (
	virtioMagic         = Word(0x00)
	virtioVersion       = Word(0x04)
	virtioDeviceID      = Word(0x08)
	virtioVendorID      = Word(0x0c)
	virtioDeviceFeature = Word(0x10)
	virtioDriverFeature = Word(0x20)
	virtioGuestPageSize = Word(0x28)
	virtioQueueSel      = Word(0x30)
	virtioQueueNumMax   = Word(0x34)
	virtioQueueNum      = Word(0x38)
	virtioQueuePFN      = Word(0x40)
	virtioQueueNotify   = Word(0x50)
	virtioStatus        = Word(0x70)
)

// VirtioDescNum is the fixed virtqueue descriptor-ring size this
// emulator supports, matching the xv6-class driver this spec targets
// (a real virtio queue negotiates this; this device always reports it
// via QueueNumMax).
const VirtioDescNum = 8

// notifySentinel is the queue_notify reset value: any other value
// means a disk operation is pending (§3).
const notifySentinel = ^Word(0)

const sectorSize = 512

// VirtioBlk is a legacy-MMIO virtio block device backed by an
// in-memory disk image.
type VirtioBlk struct {
	deviceFeatures Word
	driverFeatures Word
	guestPageSize  Word
	queueSel       Word
	queueNum       Word
	queuePFN       Word
	queueNotify    Word
	status         Word

	id uint32 // monotonically growing, wraps mod 2^32 (§9 open question).

	disk []byte

	bus *Bus // set by NewBus/Hart wiring, used by disk_access to reach DRAM.
}

func NewVirtioBlk(disk []byte) *VirtioBlk {
	return &VirtioBlk{
		queueNotify: notifySentinel,
		disk:        disk,
	}
}

// IsInterrupting reports whether a disk notification is pending.
// Unlike the UART, this is not cleared here: disk_access itself resets
// queue_notify back to the sentinel once the DMA completes.
func (v *VirtioBlk) IsInterrupting() bool {
	return v.queueNotify != notifySentinel
}

func (v *VirtioBlk) load(addr Word, size int, at AccessType) (uint64, *Trap) {
	if size != 32 {
		return 0, accessFault(at, addr)
	}

	switch addr - VirtioBase {
	case virtioMagic:
		return uint64(VirtioMagic), nil
	case virtioVersion:
		return uint64(VirtioVersion), nil
	case virtioDeviceID:
		return uint64(VirtioDeviceID), nil
	case virtioVendorID:
		return uint64(VirtioVendorID), nil
	case virtioDeviceFeature:
		return uint64(v.deviceFeatures), nil
	case virtioQueueNumMax:
		return uint64(VirtioDescNum), nil
	case virtioQueuePFN:
		return uint64(v.queuePFN), nil
	case virtioStatus:
		return uint64(v.status), nil
	default:
		return 0, nil
	}
}

func (v *VirtioBlk) store(addr Word, size int, val uint64) *Trap {
	if size != 32 {
		return &Trap{Cause: CauseStoreAMOAccessFault, Tval: addr}
	}

	w := Word(val)

	switch addr - VirtioBase {
	case virtioDriverFeature:
		v.driverFeatures = w
	case virtioGuestPageSize:
		v.guestPageSize = w
	case virtioQueueSel:
		v.queueSel = w
	case virtioQueueNum:
		v.queueNum = w
	case virtioQueuePFN:
		v.queuePFN = w
	case virtioQueueNotify:
		v.queueNotify = w
	case virtioStatus:
		v.status = w
	}

	return nil
}

// vring descriptor layout (legacy virtio): addr u64, len u32,
// flags u16, next u16 — 16 bytes per entry.
const vringDescSize = 16

// diskAccess implements the DMA engine of §4.9: it is invoked exactly
// once per detected notification, from the step loop's
// interrupt-pending evaluation.
func (v *VirtioBlk) diskAccess() {
	descRingAddr := v.queuePFN * v.guestPageSize

	availBase := descRingAddr + VirtioDescNum*vringDescSize
	availIdx := Word(v.readDRAM16(availBase + 2)) // avail[1]

	ringSlot := 2 + (availIdx % VirtioDescNum)
	descHead := Word(v.readDRAM16(availBase + ringSlot*2))

	desc0Addr := descRingAddr + descHead*vringDescSize
	outhdrAddr := Word(v.readDRAM64(desc0Addr))
	sector := v.readDRAM64(outhdrAddr + 8)
	desc0Next := Word(v.readDRAM16(desc0Addr + 14))

	desc1Addr := descRingAddr + desc0Next*vringDescSize
	bufAddr := Word(v.readDRAM64(desc1Addr))
	bufLen := v.readDRAM32(desc1Addr + 8)
	bufFlags := v.readDRAM16(desc1Addr + 12)

	dram := v.bus.DRAM.Bytes()
	disk := v.disk

	if bufFlags&2 == 0 {
		// Device-write direction: guest -> disk.
		for i := Word(0); i < bufLen; i++ {
			diskOff := sector*sectorSize + uint64(i)
			if int(bufAddr+i-DRAMBase) < len(dram) && int(diskOff) < len(disk) {
				disk[diskOff] = dram[bufAddr+i-DRAMBase]
			}
		}
	} else {
		// Device-read direction: disk -> guest.
		for i := Word(0); i < bufLen; i++ {
			diskOff := sector*sectorSize + uint64(i)
			if int(bufAddr+i-DRAMBase) < len(dram) && int(diskOff) < len(disk) {
				dram[bufAddr+i-DRAMBase] = disk[diskOff]
			}
		}
	}

	usedBase := descRingAddr + v.guestPageSize
	v.writeDRAM16(usedBase+2, uint16(v.id%VirtioDescNum))
	v.id++ // wraps mod 2^32 via plain uint32 overflow.

	v.queueNotify = notifySentinel
}

func (v *VirtioBlk) readDRAM16(addr Word) uint16 {
	dram := v.bus.DRAM.Bytes()
	off := addr - DRAMBase

	if int(off)+2 > len(dram) {
		return 0
	}

	return binary.LittleEndian.Uint16(dram[off:])
}

func (v *VirtioBlk) readDRAM32(addr Word) Word {
	dram := v.bus.DRAM.Bytes()
	off := addr - DRAMBase

	if int(off)+4 > len(dram) {
		return 0
	}

	return Word(binary.LittleEndian.Uint32(dram[off:]))
}

func (v *VirtioBlk) readDRAM64(addr Word) uint64 {
	dram := v.bus.DRAM.Bytes()
	off := addr - DRAMBase

	if int(off)+8 > len(dram) {
		return 0
	}

	return binary.LittleEndian.Uint64(dram[off:])
}

func (v *VirtioBlk) writeDRAM16(addr Word, val uint16) {
	dram := v.bus.DRAM.Bytes()
	off := addr - DRAMBase

	if int(off)+2 > len(dram) {
		return
	}

	binary.LittleEndian.PutUint16(dram[off:], val)
}
