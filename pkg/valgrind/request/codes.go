package request

import "fmt"

// Code identifies one request in one tool's namespace. The numeric values are
// fixed by the valgrind headers and must never be renumbered.
type Code Word

func (c Code) String() string {
	return fmt.Sprintf("%#x", uint32(c))
}

// Tool returns the namespace the code belongs to, judged by its two high
// bytes. Core requests live below 0x10000.
func (c Code) Tool() Tool {
	return Tool(uint32(c) >> 16)
}

// Tool is a request namespace: the two-letter tool id of VG_USERREQ_TOOL_BASE,
// or zero for the Valgrind core.
type Tool uint16

// Request namespaces.
const (
	Core      Tool = 0
	Memcheck  Tool = 'M'<<8 | 'C'
	Callgrind Tool = 'C'<<8 | 'T'
	Helgrind  Tool = 'H'<<8 | 'G'
	DRD       Tool = 'D'<<8 | 'R'
)

// ToolBase mirrors VG_USERREQ_TOOL_BASE(a, b).
func ToolBase(a, b byte) Code {
	return Code(uint32(a)<<24 | uint32(b)<<16)
}

// Base returns the first code of the tool's namespace.
func (t Tool) Base() Code {
	return ToolBase(byte(t>>8), byte(t))
}

func (t Tool) String() string {
	switch t {
	case Core:
		return "core"
	case Memcheck:
		return "memcheck"
	case Callgrind:
		return "callgrind"
	case Helgrind:
		return "helgrind"
	case DRD:
		return "drd"
	default:
		return fmt.Sprintf("tool(%c%c)", byte(t>>8), byte(t))
	}
}

// ParseTool maps a tool name as printed by Tool.String back to the tool.
func ParseTool(name string) (Tool, error) {
	for _, t := range []Tool{Core, Memcheck, Callgrind, Helgrind, DRD} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Core requests, from valgrind.h (3.8).
const (
	CoreRunningOnValgrind    Code = 0x1001
	CoreDiscardTranslations  Code = 0x1002
	CoreCountErrors          Code = 0x1201
	CoreGDBMonitorCommand    Code = 0x1202
	CoreMallocLikeBlock      Code = 0x1301
	CoreFreeLikeBlock        Code = 0x1302
	CoreCreateMempool        Code = 0x1303
	CoreDestroyMempool       Code = 0x1304
	CoreMempoolAlloc         Code = 0x1305
	CoreMempoolFree          Code = 0x1306
	CoreMempoolTrim          Code = 0x1307
	CoreMoveMempool          Code = 0x1308
	CoreMempoolChange        Code = 0x1309
	CoreMempoolExists        Code = 0x130a
	CoreResizeInPlaceBlock   Code = 0x130b
	CoreStackRegister        Code = 0x1501
	CoreStackDeregister      Code = 0x1502
	CoreStackChange          Code = 0x1503
	CoreMapIPToSrcloc        Code = 0x1701
	CoreChangeErrDisablement Code = 0x1801
)

// Memcheck requests, from memcheck.h.
const (
	MemcheckMakeMemNoAccess Code = Code(0x4d430000) + iota
	MemcheckMakeMemUndefined
	MemcheckMakeMemDefined
	MemcheckDiscard
	MemcheckCheckMemIsAddressable
	MemcheckCheckMemIsDefined
	MemcheckDoLeakCheck
	MemcheckCountLeaks
	MemcheckGetVBits
	MemcheckSetVBits
	MemcheckCreateBlock
	MemcheckMakeMemDefinedIfAddressable
	MemcheckCountLeakBlocks
	MemcheckEnableAddrErrorReportingInRange
	MemcheckDisableAddrErrorReportingInRange
)

// Callgrind requests, from callgrind.h.
const (
	CallgrindDumpStats Code = Code(0x43540000) + iota
	CallgrindZeroStats
	CallgrindToggleCollect
	CallgrindDumpStatsAt
	CallgrindStartInstrumentation
	CallgrindStopInstrumentation
)

// Helgrind requests, from helgrind.h. Only the public one is listed; the rest
// of the namespace is reserved for Helgrind's pthread interceptors.
const (
	HelgrindCleanMemory Code = 0x48470000
)

// DRD requests, from drd.h. DRD_CLEAN_MEMORY deliberately reuses the Helgrind
// code so that either tool honors it.
const (
	DRDCleanMemory Code = HelgrindCleanMemory
)

const (
	DRDGetValgrindThreadID Code = Code(0x44520000) + iota
	DRDGetDRDThreadID
	DRDStartSuppression
	DRDFinishSuppression
	DRDStartTraceAddr
	DRDStopTraceAddr
	DRDRecordLoads
	DRDRecordStores
	DRDSetThreadName
)
