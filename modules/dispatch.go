package modules

type Opcode byte

const (
	OpInitializeProtocol Opcode = iota
	OpInitializeInstitution
	OpAddSubject
	OpEnrollStudent
	OpPaySemesterFee
	OpUnstake
)

var opcodeNames = map[Opcode]string{
	OpInitializeProtocol:    "InitializeProtocol",
	OpInitializeInstitution: "InitializeInstitution",
	OpAddSubject:            "AddSubject",
	OpEnrollStudent:         "EnrollStudent",
	OpPaySemesterFee:        "PaySemesterFee",
	OpUnstake:               "Unstake",
}

func (opcode Opcode) String() string {
	if name, ok := opcodeNames[opcode]; ok {
		return name
	}
	return "Unknown"
}

// Process decodes the argument block of opcode and runs its handler.
func (program *Program) Process(opcode byte, data []byte) error {
	switch Opcode(opcode) {
	case OpInitializeProtocol:
		args, err := DecodeProtocolArgs(data)
		if err != nil {
			return err
		}
		return program.InitializeProtocol(args)
	case OpInitializeInstitution:
		args, err := DecodeBumpArgs(data)
		if err != nil {
			return err
		}
		return program.InitializeInstitution(args)
	case OpAddSubject:
		args, err := DecodeSubjectArgs(data)
		if err != nil {
			return err
		}
		return program.AddSubject(args)
	case OpEnrollStudent:
		args, err := DecodeBumpArgs(data)
		if err != nil {
			return err
		}
		return program.EnrollStudent(args)
	case OpPaySemesterFee:
		if len(data) != 0 {
			return wrap(ErrInvalidArguments, "%s takes no arguments", OpPaySemesterFee)
		}
		return program.PaySemesterFee()
	case OpUnstake:
		if len(data) != 0 {
			return wrap(ErrInvalidArguments, "%s takes no arguments", OpUnstake)
		}
		return program.Unstake()
	default:
		return wrap(ErrInvalidInstruction, "opcode %d", opcode)
	}
}
