package modules

import (
	"tuition-node/crypto"
)

// AddSubject lists a subject of an institution, charges the institution the protocol fee
// and mints one collection token to the institution.
//
// Handles: admin (signer), fee mint, subject record, institution record, institution fee account,
// protocol record, treasury, collection mint, institution collection account.
func (program *Program) AddSubject(args SubjectArgs) error {
	handles, err := program.accounts(9)
	if err != nil {
		return err
	}
	admin, feeMint, subjectHandle := handles[0], handles[1], handles[2]
	institutionHandle, institutionFeeAccount := handles[3], handles[4]
	protocolHandle, treasury := handles[5], handles[6]
	collectionMint, collectionAccount := handles[7], handles[8]

	if err := requireSigner(admin); err != nil {
		return err
	}
	institution, err := program.institution(institutionHandle.Key)
	if err != nil {
		return err
	}
	protocol, err := program.protocol(protocolHandle.Key)
	if err != nil {
		return err
	}
	if institution.ProtocolKey != protocolHandle.Key {
		return wrap(ErrAccountMismatch, "institution %s belongs to protocol %s", institutionHandle.Key, institution.ProtocolKey)
	}
	// the admin is whoever the institution address was derived from
	if err := verify(institutionHandle.Key, institution.Bump, InstitutionSeeds(admin.Key, protocolHandle.Key)); err != nil {
		return err
	}
	if args.MaxSemesterCount == 0 {
		return wrap(ErrDivisionHazard, "max semester count is zero")
	}
	seeds := SubjectSeeds(institutionHandle.Key, institution.NextSubjectSeq)
	if err := verify(subjectHandle.Key, args.Bump, seeds); err != nil {
		return err
	}
	next, err := increment(institution.NextSubjectSeq, "subject sequence")
	if err != nil {
		return err
	}
	fee, err := PercentOf(args.TuitionFee, protocol.FeeFromInstitutionPct)
	if err != nil {
		return err
	}
	signers, err := program.signedAs(crypto.NewDerivedAuthority(args.Bump, seeds...))
	if err != nil {
		return err
	}

	state := &SubjectState{
		InstitutionKey:    institutionHandle.Key,
		SubjectSeq:        institution.NextSubjectSeq,
		TuitionFee:        args.TuitionFee,
		MaxSemesterCount:  args.MaxSemesterCount,
		MonthsPerSemester: args.MonthsPerSemester,
		Bump:              args.Bump,
	}
	if err := program.create(signers, admin.Key, subjectHandle.Key, state, SubjectStateLen); err != nil {
		return err
	}
	institution.NextSubjectSeq = next
	if err := program.Cache.WriteRecord(institutionHandle.Key, institution); err != nil {
		return err
	}

	if err := program.ownedTokenAccount(treasury.Key, protocolHandle.Key); err != nil {
		return err
	}
	mint, err := program.Tokens.Mint(feeMint.Key)
	if err != nil {
		return err
	}
	// the admin signs the transfer directly, no derived authority involved
	err = program.Tokens.TransferChecked(program.signers, institutionFeeAccount.Key, treasury.Key, feeMint.Key, fee, admin.Key, mint.Decimals)
	if err != nil {
		return err
	}
	program.Logger.Debug("Charged listing fee", "subject", subjectHandle.Key, "fee", fee)

	if err := program.mintCollection(signers, admin.Key, subjectHandle.Key, collectionMint.Key, collectionAccount.Key); err != nil {
		return err
	}
	program.Logger.Info("Added subject", "subject", subjectHandle.Key, "institution", institutionHandle.Key, "seq", state.SubjectSeq)
	return nil
}

// mintCollection sets up the collection mint of a subject on first use and mints one token to the institution.
func (program *Program) mintCollection(signers Signers, admin, subject, mint, account crypto.Address) error {
	emptyMint, err := program.isEmpty(mint)
	if err != nil {
		return err
	}
	if emptyMint {
		if err := program.Tokens.InitializeMint(signers, admin, mint, CredentialDecimals, subject, &subject); err != nil {
			return err
		}
	}
	emptyAccount, err := program.isEmpty(account)
	if err != nil {
		return err
	}
	if emptyAccount {
		if err := program.Tokens.InitializeAccount(signers, admin, account, mint, admin); err != nil {
			return err
		}
	}
	return program.Tokens.MintTo(signers, mint, account, CredentialAmount, CredentialDecimals)
}
