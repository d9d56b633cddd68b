package ir

// Opcode identifies an instruction's operation.
type Opcode uint8

const (
	OpNOP Opcode = iota

	OpMOV
	OpARL
	OpRCP
	OpRSQ
	OpSQRT
	OpEX2
	OpLG2
	OpFLR
	OpFRC
	OpTRUNC
	OpCEIL
	OpROUND
	OpSIN
	OpCOS
	OpSSG
	OpDDX
	OpDDY

	OpADD
	OpMUL
	OpDP2
	OpDP3
	OpDP4
	OpMIN
	OpMAX
	OpPOW
	OpDIV
	OpSLT
	OpSGE
	OpSGT
	OpSLE
	OpSEQ
	OpSNE

	OpMAD
	OpLRP
	OpCMP

	OpI2F
	OpF2I
	OpU2F
	OpF2U
	OpNOT
	OpUADD
	OpAND
	OpOR
	OpXOR
	OpSHL

	OpTEX
	OpTXP
	OpTXB
	OpTXL
	OpTXF

	OpKILL
	OpKILL_IF

	OpIF
	OpUIF
	OpELSE
	OpENDIF
	OpSWITCH
	OpCASE
	OpDEFAULT
	OpENDSWITCH
	OpBGNLOOP
	OpENDLOOP
	OpBRK
	OpCONT
	OpCAL
	OpRET
	OpBGNSUB
	OpENDSUB
	OpEND

	OpEMIT
	OpENDPRIM

	opcodeCount
)

// Flow classifies the structural effect of an opcode.
type Flow uint8

const (
	FlowNone Flow = iota
	// FlowOpen starts a conditional, switch or loop block.
	FlowOpen
	// FlowElse splits an open conditional.
	FlowElse
	// FlowClose ends the innermost block.
	FlowClose
	// FlowSubBegin starts a subroutine body.
	FlowSubBegin
	// FlowSubEnd ends a subroutine body.
	FlowSubEnd
)

// OpcodeInfo is the static description of an opcode.
type OpcodeInfo struct {
	Name    string
	NumDst  uint8
	NumSrc  uint8
	Texture bool
	Label   bool
	Flow    Flow
}

var opcodeInfo = [opcodeCount]OpcodeInfo{
	OpNOP: {Name: "NOP"},

	OpMOV:   {Name: "MOV", NumDst: 1, NumSrc: 1},
	OpARL:   {Name: "ARL", NumDst: 1, NumSrc: 1},
	OpRCP:   {Name: "RCP", NumDst: 1, NumSrc: 1},
	OpRSQ:   {Name: "RSQ", NumDst: 1, NumSrc: 1},
	OpSQRT:  {Name: "SQRT", NumDst: 1, NumSrc: 1},
	OpEX2:   {Name: "EX2", NumDst: 1, NumSrc: 1},
	OpLG2:   {Name: "LG2", NumDst: 1, NumSrc: 1},
	OpFLR:   {Name: "FLR", NumDst: 1, NumSrc: 1},
	OpFRC:   {Name: "FRC", NumDst: 1, NumSrc: 1},
	OpTRUNC: {Name: "TRUNC", NumDst: 1, NumSrc: 1},
	OpCEIL:  {Name: "CEIL", NumDst: 1, NumSrc: 1},
	OpROUND: {Name: "ROUND", NumDst: 1, NumSrc: 1},
	OpSIN:   {Name: "SIN", NumDst: 1, NumSrc: 1},
	OpCOS:   {Name: "COS", NumDst: 1, NumSrc: 1},
	OpSSG:   {Name: "SSG", NumDst: 1, NumSrc: 1},
	OpDDX:   {Name: "DDX", NumDst: 1, NumSrc: 1},
	OpDDY:   {Name: "DDY", NumDst: 1, NumSrc: 1},

	OpADD: {Name: "ADD", NumDst: 1, NumSrc: 2},
	OpMUL: {Name: "MUL", NumDst: 1, NumSrc: 2},
	OpDP2: {Name: "DP2", NumDst: 1, NumSrc: 2},
	OpDP3: {Name: "DP3", NumDst: 1, NumSrc: 2},
	OpDP4: {Name: "DP4", NumDst: 1, NumSrc: 2},
	OpMIN: {Name: "MIN", NumDst: 1, NumSrc: 2},
	OpMAX: {Name: "MAX", NumDst: 1, NumSrc: 2},
	OpPOW: {Name: "POW", NumDst: 1, NumSrc: 2},
	OpDIV: {Name: "DIV", NumDst: 1, NumSrc: 2},
	OpSLT: {Name: "SLT", NumDst: 1, NumSrc: 2},
	OpSGE: {Name: "SGE", NumDst: 1, NumSrc: 2},
	OpSGT: {Name: "SGT", NumDst: 1, NumSrc: 2},
	OpSLE: {Name: "SLE", NumDst: 1, NumSrc: 2},
	OpSEQ: {Name: "SEQ", NumDst: 1, NumSrc: 2},
	OpSNE: {Name: "SNE", NumDst: 1, NumSrc: 2},

	OpMAD: {Name: "MAD", NumDst: 1, NumSrc: 3},
	OpLRP: {Name: "LRP", NumDst: 1, NumSrc: 3},
	OpCMP: {Name: "CMP", NumDst: 1, NumSrc: 3},

	OpI2F:  {Name: "I2F", NumDst: 1, NumSrc: 1},
	OpF2I:  {Name: "F2I", NumDst: 1, NumSrc: 1},
	OpU2F:  {Name: "U2F", NumDst: 1, NumSrc: 1},
	OpF2U:  {Name: "F2U", NumDst: 1, NumSrc: 1},
	OpNOT:  {Name: "NOT", NumDst: 1, NumSrc: 1},
	OpUADD: {Name: "UADD", NumDst: 1, NumSrc: 2},
	OpAND:  {Name: "AND", NumDst: 1, NumSrc: 2},
	OpOR:   {Name: "OR", NumDst: 1, NumSrc: 2},
	OpXOR:  {Name: "XOR", NumDst: 1, NumSrc: 2},
	OpSHL:  {Name: "SHL", NumDst: 1, NumSrc: 2},

	OpTEX: {Name: "TEX", NumDst: 1, NumSrc: 2, Texture: true},
	OpTXP: {Name: "TXP", NumDst: 1, NumSrc: 2, Texture: true},
	OpTXB: {Name: "TXB", NumDst: 1, NumSrc: 2, Texture: true},
	OpTXL: {Name: "TXL", NumDst: 1, NumSrc: 2, Texture: true},
	OpTXF: {Name: "TXF", NumDst: 1, NumSrc: 2, Texture: true},

	OpKILL:    {Name: "KILL"},
	OpKILL_IF: {Name: "KILL_IF", NumSrc: 1},

	OpIF:        {Name: "IF", NumSrc: 1, Label: true, Flow: FlowOpen},
	OpUIF:       {Name: "UIF", NumSrc: 1, Label: true, Flow: FlowOpen},
	OpELSE:      {Name: "ELSE", Label: true, Flow: FlowElse},
	OpENDIF:     {Name: "ENDIF", Flow: FlowClose},
	OpSWITCH:    {Name: "SWITCH", NumSrc: 1, Flow: FlowOpen},
	OpCASE:      {Name: "CASE", NumSrc: 1},
	OpDEFAULT:   {Name: "DEFAULT"},
	OpENDSWITCH: {Name: "ENDSWITCH", Flow: FlowClose},
	OpBGNLOOP:   {Name: "BGNLOOP", Label: true, Flow: FlowOpen},
	OpENDLOOP:   {Name: "ENDLOOP", Label: true, Flow: FlowClose},
	OpBRK:       {Name: "BRK"},
	OpCONT:      {Name: "CONT"},
	OpCAL:       {Name: "CAL", Label: true},
	OpRET:       {Name: "RET"},
	OpBGNSUB:    {Name: "BGNSUB", Flow: FlowSubBegin},
	OpENDSUB:    {Name: "ENDSUB", Flow: FlowSubEnd},
	OpEND:       {Name: "END"},

	OpEMIT:    {Name: "EMIT", NumSrc: 1},
	OpENDPRIM: {Name: "ENDPRIM", NumSrc: 1},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for i := range opcodeInfo {
		m[opcodeInfo[i].Name] = Opcode(i)
	}
	return m
}()

// Info returns the static description of op. Unknown opcodes report an
// empty name.
func (op Opcode) Info() OpcodeInfo {
	if op < opcodeCount {
		return opcodeInfo[op]
	}
	return OpcodeInfo{}
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool { return op < opcodeCount }

func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeInfo[op].Name
	}
	return "UNKNOWN"
}

// LookupOpcode resolves a mnemonic such as "KILL_IF".
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}
