package modules

/*
Fixed size record layouts. Every integer is little endian, every address is 32 raw bytes,
fields are packed without padding in the order they are declared.
*/

import (
	"encoding/binary"

	"tuition-node/crypto"
)

const (
	ProtocolStateLen    = 32 + 8 + 8 + 8 + 1
	InstitutionStateLen = 32 + 32 + 8 + 8 + 8 + 1
	SubjectStateLen     = 32 + 8 + 8 + 8 + 8 + 1
	EnrollmentStateLen  = 32 + 8 + 8 + 8 + 1
)

type Record interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

var le = binary.LittleEndian

func readAddress(data []byte, offset int) (address crypto.Address) {
	copy(address[:], data[offset:offset+crypto.AddressSize])
	return
}

// ------------------------------------------------------------------------------------------------------------------- //
// PROTOCOL

// ProtocolState is the root registry, one per administrator.
type ProtocolState struct {
	Admin                 crypto.Address
	NextInstitutionSeq    uint64
	FeeFromInstitutionPct uint64
	FeeFromStudentPct     uint64
	Bump                  byte
}

func (state *ProtocolState) MarshalBinary() ([]byte, error) {
	data := make([]byte, ProtocolStateLen)
	copy(data[0:32], state.Admin[:])
	le.PutUint64(data[32:40], state.NextInstitutionSeq)
	le.PutUint64(data[40:48], state.FeeFromInstitutionPct)
	le.PutUint64(data[48:56], state.FeeFromStudentPct)
	data[56] = state.Bump
	return data, nil
}

func (state *ProtocolState) UnmarshalBinary(data []byte) error {
	if len(data) != ProtocolStateLen {
		return wrap(ErrMalformedRecord, "protocol state is %d bytes", len(data))
	}
	state.Admin = readAddress(data, 0)
	state.NextInstitutionSeq = le.Uint64(data[32:40])
	state.FeeFromInstitutionPct = le.Uint64(data[40:48])
	state.FeeFromStudentPct = le.Uint64(data[48:56])
	state.Bump = data[56]
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// INSTITUTION

type InstitutionState struct {
	InstitutionKey    crypto.Address // the record's own derived address
	ProtocolKey       crypto.Address
	InstitutionSeq    uint64
	NextSubjectSeq    uint64
	NextEnrollmentSeq uint64
	Bump              byte
}

func (state *InstitutionState) MarshalBinary() ([]byte, error) {
	data := make([]byte, InstitutionStateLen)
	copy(data[0:32], state.InstitutionKey[:])
	copy(data[32:64], state.ProtocolKey[:])
	le.PutUint64(data[64:72], state.InstitutionSeq)
	le.PutUint64(data[72:80], state.NextSubjectSeq)
	le.PutUint64(data[80:88], state.NextEnrollmentSeq)
	data[88] = state.Bump
	return data, nil
}

func (state *InstitutionState) UnmarshalBinary(data []byte) error {
	if len(data) != InstitutionStateLen {
		return wrap(ErrMalformedRecord, "institution state is %d bytes", len(data))
	}
	state.InstitutionKey = readAddress(data, 0)
	state.ProtocolKey = readAddress(data, 32)
	state.InstitutionSeq = le.Uint64(data[64:72])
	state.NextSubjectSeq = le.Uint64(data[72:80])
	state.NextEnrollmentSeq = le.Uint64(data[80:88])
	state.Bump = data[88]
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// SUBJECT

type SubjectState struct {
	InstitutionKey    crypto.Address
	SubjectSeq        uint64
	TuitionFee        uint64
	MaxSemesterCount  uint64
	MonthsPerSemester uint64
	Bump              byte
}

func (state *SubjectState) MarshalBinary() ([]byte, error) {
	data := make([]byte, SubjectStateLen)
	copy(data[0:32], state.InstitutionKey[:])
	le.PutUint64(data[32:40], state.SubjectSeq)
	le.PutUint64(data[40:48], state.TuitionFee)
	le.PutUint64(data[48:56], state.MaxSemesterCount)
	le.PutUint64(data[56:64], state.MonthsPerSemester)
	data[64] = state.Bump
	return data, nil
}

func (state *SubjectState) UnmarshalBinary(data []byte) error {
	if len(data) != SubjectStateLen {
		return wrap(ErrMalformedRecord, "subject state is %d bytes", len(data))
	}
	state.InstitutionKey = readAddress(data, 0)
	state.SubjectSeq = le.Uint64(data[32:40])
	state.TuitionFee = le.Uint64(data[40:48])
	state.MaxSemesterCount = le.Uint64(data[48:56])
	state.MonthsPerSemester = le.Uint64(data[56:64])
	state.Bump = data[64]
	return nil
}

// ------------------------------------------------------------------------------------------------------------------- //
// ENROLLMENT

// EnrollmentState tracks one student in one subject.
// SemestersPaid starts at 1 and names the next semester to be paid.
type EnrollmentState struct {
	StudentKey     crypto.Address
	EnrollmentSeq  uint64
	StartTimestamp int64
	SemestersPaid  uint64
	Bump           byte
}

func (state *EnrollmentState) MarshalBinary() ([]byte, error) {
	data := make([]byte, EnrollmentStateLen)
	copy(data[0:32], state.StudentKey[:])
	le.PutUint64(data[32:40], state.EnrollmentSeq)
	le.PutUint64(data[40:48], uint64(state.StartTimestamp))
	le.PutUint64(data[48:56], state.SemestersPaid)
	data[56] = state.Bump
	return data, nil
}

func (state *EnrollmentState) UnmarshalBinary(data []byte) error {
	if len(data) != EnrollmentStateLen {
		return wrap(ErrMalformedRecord, "enrollment state is %d bytes", len(data))
	}
	state.StudentKey = readAddress(data, 0)
	state.EnrollmentSeq = le.Uint64(data[32:40])
	state.StartTimestamp = int64(le.Uint64(data[40:48]))
	state.SemestersPaid = le.Uint64(data[48:56])
	state.Bump = data[56]
	return nil
}
