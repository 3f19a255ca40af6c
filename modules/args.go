package modules

const (
	ProtocolArgsLen    = 8 + 8 + 1
	InstitutionArgsLen = 1
	SubjectArgsLen     = 8 + 8 + 8 + 1
	EnrollmentArgsLen  = 1
)

type ProtocolArgs struct {
	FeeFromInstitutionPct uint64
	FeeFromStudentPct     uint64
	Bump                  byte
}

func (args *ProtocolArgs) Encode() []byte {
	data := make([]byte, ProtocolArgsLen)
	le.PutUint64(data[0:8], args.FeeFromInstitutionPct)
	le.PutUint64(data[8:16], args.FeeFromStudentPct)
	data[16] = args.Bump
	return data
}

func DecodeProtocolArgs(data []byte) (args ProtocolArgs, err error) {
	if len(data) != ProtocolArgsLen {
		return args, wrap(ErrInvalidArguments, "protocol args are %d bytes, want %d", len(data), ProtocolArgsLen)
	}
	args.FeeFromInstitutionPct = le.Uint64(data[0:8])
	args.FeeFromStudentPct = le.Uint64(data[8:16])
	args.Bump = data[16]
	return args, nil
}

// BumpArgs is the argument block of InitializeInstitution and EnrollStudent.
type BumpArgs struct {
	Bump byte
}

func (args *BumpArgs) Encode() []byte {
	return []byte{args.Bump}
}

func DecodeBumpArgs(data []byte) (args BumpArgs, err error) {
	if len(data) != InstitutionArgsLen {
		return args, wrap(ErrInvalidArguments, "bump args are %d bytes, want %d", len(data), InstitutionArgsLen)
	}
	args.Bump = data[0]
	return args, nil
}

type SubjectArgs struct {
	TuitionFee        uint64
	MaxSemesterCount  uint64
	MonthsPerSemester uint64
	Bump              byte
}

func (args *SubjectArgs) Encode() []byte {
	data := make([]byte, SubjectArgsLen)
	le.PutUint64(data[0:8], args.TuitionFee)
	le.PutUint64(data[8:16], args.MaxSemesterCount)
	le.PutUint64(data[16:24], args.MonthsPerSemester)
	data[24] = args.Bump
	return data
}

func DecodeSubjectArgs(data []byte) (args SubjectArgs, err error) {
	if len(data) != SubjectArgsLen {
		return args, wrap(ErrInvalidArguments, "subject args are %d bytes, want %d", len(data), SubjectArgsLen)
	}
	args.TuitionFee = le.Uint64(data[0:8])
	args.MaxSemesterCount = le.Uint64(data[8:16])
	args.MonthsPerSemester = le.Uint64(data[16:24])
	args.Bump = data[24]
	return args, nil
}
