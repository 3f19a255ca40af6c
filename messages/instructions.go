package messages

import (
	"tuition-node/crypto"
	"tuition-node/modules"
)

func signer(key crypto.Address) AccountMeta {
	return AccountMeta{Key: key, Signer: true}
}

func readonly(key crypto.Address) AccountMeta {
	return AccountMeta{Key: key}
}

func NewTransaction(instruction Instruction, time int64) *Transaction {
	return &Transaction{Instruction: instruction, Time: time}
}

// InitializeProtocol expects the treasury key to sign, since its storage is allocated.
func InitializeProtocol(admin, feeMint, protocol, treasury crypto.Address, args modules.ProtocolArgs) Instruction {
	return Instruction{
		Opcode: byte(modules.OpInitializeProtocol),
		Data:   args.Encode(),
		Accounts: []AccountMeta{
			signer(admin), readonly(feeMint), readonly(protocol), signer(treasury),
		},
	}
}

func InitializeInstitution(admin, institution, protocol crypto.Address, bump byte) Instruction {
	args := modules.BumpArgs{Bump: bump}
	return Instruction{
		Opcode:   byte(modules.OpInitializeInstitution),
		Data:     args.Encode(),
		Accounts: []AccountMeta{signer(admin), readonly(institution), readonly(protocol)},
	}
}

type SubjectAccounts struct {
	Admin                 crypto.Address
	FeeMint               crypto.Address
	Subject               crypto.Address
	Institution           crypto.Address
	InstitutionFeeAccount crypto.Address
	Protocol              crypto.Address
	Treasury              crypto.Address
	CollectionMint        crypto.Address
	CollectionAccount     crypto.Address
}

// AddSubject expects the collection mint and account keys to sign, since they may be allocated.
func AddSubject(accounts SubjectAccounts, args modules.SubjectArgs) Instruction {
	return Instruction{
		Opcode: byte(modules.OpAddSubject),
		Data:   args.Encode(),
		Accounts: []AccountMeta{
			signer(accounts.Admin),
			readonly(accounts.FeeMint),
			readonly(accounts.Subject),
			readonly(accounts.Institution),
			readonly(accounts.InstitutionFeeAccount),
			readonly(accounts.Protocol),
			readonly(accounts.Treasury),
			signer(accounts.CollectionMint),
			signer(accounts.CollectionAccount),
		},
	}
}

type EnrollmentAccounts struct {
	Student           crypto.Address
	Enrollment        crypto.Address
	Subject           crypto.Address
	Institution       crypto.Address
	Protocol          crypto.Address
	CredentialMint    crypto.Address
	CredentialAccount crypto.Address
}

func EnrollStudent(accounts EnrollmentAccounts, bump byte) Instruction {
	args := modules.BumpArgs{Bump: bump}
	return Instruction{
		Opcode: byte(modules.OpEnrollStudent),
		Data:   args.Encode(),
		Accounts: []AccountMeta{
			signer(accounts.Student),
			readonly(accounts.Enrollment),
			readonly(accounts.Subject),
			readonly(accounts.Institution),
			readonly(accounts.Protocol),
			signer(accounts.CredentialMint),
			signer(accounts.CredentialAccount),
		},
	}
}

type PaymentAccounts struct {
	Student               crypto.Address
	FeeMint               crypto.Address
	InstitutionAdmin      crypto.Address
	Enrollment            crypto.Address
	StudentFeeAccount     crypto.Address
	Subject               crypto.Address
	Institution           crypto.Address
	Protocol              crypto.Address
	InstitutionFeeAccount crypto.Address
	Treasury              crypto.Address
}

func PaySemesterFee(accounts PaymentAccounts) Instruction {
	return Instruction{
		Opcode: byte(modules.OpPaySemesterFee),
		Accounts: []AccountMeta{
			signer(accounts.Student),
			readonly(accounts.FeeMint),
			readonly(accounts.InstitutionAdmin),
			readonly(accounts.Enrollment),
			readonly(accounts.StudentFeeAccount),
			readonly(accounts.Subject),
			readonly(accounts.Institution),
			readonly(accounts.Protocol),
			readonly(accounts.InstitutionFeeAccount),
			readonly(accounts.Treasury),
		},
	}
}

func Unstake(student, enrollment, subject, credentialMint, credentialAccount crypto.Address) Instruction {
	return Instruction{
		Opcode: byte(modules.OpUnstake),
		Accounts: []AccountMeta{
			signer(student), readonly(enrollment), readonly(subject), readonly(credentialMint), readonly(credentialAccount),
		},
	}
}
