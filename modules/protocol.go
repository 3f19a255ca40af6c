package modules

import (
	"tuition-node/crypto"
)

// InitializeProtocol creates the root registry of an administrator and its treasury.
//
// Handles: admin (signer), fee mint, protocol record, treasury (signer).
func (program *Program) InitializeProtocol(args ProtocolArgs) error {
	handles, err := program.accounts(4)
	if err != nil {
		return err
	}
	admin, feeMint, protocolHandle, treasury := handles[0], handles[1], handles[2], handles[3]
	if err := requireSigner(admin); err != nil {
		return err
	}
	if args.FeeFromInstitutionPct > MaxFeePercent || args.FeeFromStudentPct > MaxFeePercent {
		return wrap(ErrInvalidFeePercent, "institution %d, student %d", args.FeeFromInstitutionPct, args.FeeFromStudentPct)
	}
	seeds := ProtocolSeeds(admin.Key)
	if err := verify(protocolHandle.Key, args.Bump, seeds); err != nil {
		return err
	}
	signers, err := program.signedAs(crypto.NewDerivedAuthority(args.Bump, seeds...))
	if err != nil {
		return err
	}
	state := &ProtocolState{
		Admin:                 admin.Key,
		NextInstitutionSeq:    1,
		FeeFromInstitutionPct: args.FeeFromInstitutionPct,
		FeeFromStudentPct:     args.FeeFromStudentPct,
		Bump:                  args.Bump,
	}
	if err := program.create(signers, admin.Key, protocolHandle.Key, state, ProtocolStateLen); err != nil {
		return err
	}
	if err := program.Tokens.InitializeAccount(signers, admin.Key, treasury.Key, feeMint.Key, protocolHandle.Key); err != nil {
		return err
	}
	program.Logger.Info("Initialized protocol", "protocol", protocolHandle.Key, "admin", admin.Key, "treasury", treasury.Key)
	return nil
}

// InitializeInstitution registers an institution under a protocol and takes the next institution sequence id.
//
// Handles: admin (signer), institution record, protocol record.
func (program *Program) InitializeInstitution(args BumpArgs) error {
	handles, err := program.accounts(3)
	if err != nil {
		return err
	}
	admin, institutionHandle, protocolHandle := handles[0], handles[1], handles[2]
	if err := requireSigner(admin); err != nil {
		return err
	}
	protocol, err := program.protocol(protocolHandle.Key)
	if err != nil {
		return err
	}
	seeds := InstitutionSeeds(admin.Key, protocolHandle.Key)
	if err := verify(institutionHandle.Key, args.Bump, seeds); err != nil {
		return err
	}
	next, err := increment(protocol.NextInstitutionSeq, "institution sequence")
	if err != nil {
		return err
	}
	signers, err := program.signedAs(crypto.NewDerivedAuthority(args.Bump, seeds...))
	if err != nil {
		return err
	}
	state := &InstitutionState{
		InstitutionKey: institutionHandle.Key,
		ProtocolKey:    protocolHandle.Key,
		InstitutionSeq: protocol.NextInstitutionSeq,
		Bump:           args.Bump,
	}
	if err := program.create(signers, admin.Key, institutionHandle.Key, state, InstitutionStateLen); err != nil {
		return err
	}
	protocol.NextInstitutionSeq = next
	if err := program.Cache.WriteRecord(protocolHandle.Key, protocol); err != nil {
		return err
	}
	program.Logger.Info("Initialized institution", "institution", institutionHandle.Key, "seq", state.InstitutionSeq)
	return nil
}
