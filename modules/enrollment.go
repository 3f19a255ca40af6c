package modules

import (
	"tuition-node/crypto"
)

// EnrollStudent enrolls a student in a subject and stakes a freshly minted credential
// by freezing it under the enrollment's authority.
//
// Handles: student (signer), enrollment record, subject record, institution record, protocol record,
// credential mint, student credential account.
func (program *Program) EnrollStudent(args BumpArgs) error {
	handles, err := program.accounts(7)
	if err != nil {
		return err
	}
	student, enrollmentHandle, subjectHandle := handles[0], handles[1], handles[2]
	institutionHandle, protocolHandle := handles[3], handles[4]
	credentialMint, credentialAccount := handles[5], handles[6]

	if err := requireSigner(student); err != nil {
		return err
	}
	subject, err := program.subject(subjectHandle.Key)
	if err != nil {
		return err
	}
	institution, err := program.institution(institutionHandle.Key)
	if err != nil {
		return err
	}
	if _, err := program.protocol(protocolHandle.Key); err != nil {
		return err
	}
	if subject.InstitutionKey != institutionHandle.Key {
		return wrap(ErrAccountMismatch, "subject %s belongs to institution %s", subjectHandle.Key, subject.InstitutionKey)
	}
	if institution.ProtocolKey != protocolHandle.Key {
		return wrap(ErrAccountMismatch, "institution %s belongs to protocol %s", institutionHandle.Key, institution.ProtocolKey)
	}
	seeds := EnrollmentSeeds(student.Key, subjectHandle.Key)
	if err := verify(enrollmentHandle.Key, args.Bump, seeds); err != nil {
		return err
	}
	next, err := increment(institution.NextEnrollmentSeq, "enrollment sequence")
	if err != nil {
		return err
	}
	signers, err := program.signedAs(crypto.NewDerivedAuthority(args.Bump, seeds...))
	if err != nil {
		return err
	}

	// the clock starts at the first payment, see PaySemesterFee
	state := &EnrollmentState{
		StudentKey:    student.Key,
		EnrollmentSeq: institution.NextEnrollmentSeq,
		SemestersPaid: FirstSemester,
		Bump:          args.Bump,
	}
	if err := program.create(signers, student.Key, enrollmentHandle.Key, state, EnrollmentStateLen); err != nil {
		return err
	}
	institution.NextEnrollmentSeq = next
	if err := program.Cache.WriteRecord(institutionHandle.Key, institution); err != nil {
		return err
	}

	if err := program.stakeCredential(signers, student.Key, enrollmentHandle.Key, credentialMint.Key, credentialAccount.Key); err != nil {
		return err
	}
	program.Logger.Info("Enrolled student", "enrollment", enrollmentHandle.Key, "subject", subjectHandle.Key, "seq", state.EnrollmentSeq)
	return nil
}

func (program *Program) stakeCredential(signers Signers, student, enrollment, mint, account crypto.Address) error {
	emptyMint, err := program.isEmpty(mint)
	if err != nil {
		return err
	}
	if emptyMint {
		if err := program.Tokens.InitializeMint(signers, student, mint, CredentialDecimals, enrollment, &enrollment); err != nil {
			return err
		}
	}
	emptyAccount, err := program.isEmpty(account)
	if err != nil {
		return err
	}
	if emptyAccount {
		if err := program.Tokens.InitializeAccount(signers, student, account, mint, student); err != nil {
			return err
		}
	}
	if err := program.Tokens.MintTo(signers, mint, account, CredentialAmount, CredentialDecimals); err != nil {
		return err
	}
	if err := program.Tokens.SetFreezeAuthority(signers, account, student, enrollment); err != nil {
		return err
	}
	program.Logger.Debug("Freezing credential", "account", account, "authority", enrollment)
	return program.Tokens.FreezeAccount(signers, account, mint, enrollment)
}

// PaySemesterFee pays one semester: the protocol cut goes to the treasury, the rest to the institution.
//
// Handles: student (signer), fee mint, institution admin, enrollment record, student fee account,
// subject record, institution record, protocol record, institution fee account, treasury.
func (program *Program) PaySemesterFee() error {
	handles, err := program.accounts(10)
	if err != nil {
		return err
	}
	student, feeMint, admin := handles[0], handles[1], handles[2]
	enrollmentHandle, studentFeeAccount, subjectHandle := handles[3], handles[4], handles[5]
	institutionHandle, protocolHandle := handles[6], handles[7]
	institutionFeeAccount, treasury := handles[8], handles[9]

	if err := requireSigner(student); err != nil {
		return err
	}
	enrollment, err := program.enrollment(enrollmentHandle.Key)
	if err != nil {
		return err
	}
	subject, err := program.subject(subjectHandle.Key)
	if err != nil {
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
	if err := program.checkEnrollment(student.Key, enrollmentHandle.Key, subjectHandle.Key, enrollment); err != nil {
		return err
	}
	if subject.InstitutionKey != institutionHandle.Key {
		return wrap(ErrAccountMismatch, "subject %s belongs to institution %s", subjectHandle.Key, subject.InstitutionKey)
	}
	if institution.ProtocolKey != protocolHandle.Key {
		return wrap(ErrAccountMismatch, "institution %s belongs to protocol %s", institutionHandle.Key, institution.ProtocolKey)
	}
	if err := verify(institutionHandle.Key, institution.Bump, InstitutionSeeds(admin.Key, protocolHandle.Key)); err != nil {
		return err
	}
	if err := program.ownedTokenAccount(institutionFeeAccount.Key, admin.Key); err != nil {
		return err
	}
	if err := program.ownedTokenAccount(treasury.Key, protocolHandle.Key); err != nil {
		return err
	}
	if enrollment.SemestersPaid > subject.MaxSemesterCount {
		return wrap(ErrSemesterLimitExceeded, "semester %d of %d", enrollment.SemestersPaid, subject.MaxSemesterCount)
	}

	if enrollment.SemestersPaid == FirstSemester {
		enrollment.StartTimestamp = program.Clock.Now()
	}
	protocolCut, institutionShare, err := SplitSemesterFee(subject.TuitionFee, subject.MaxSemesterCount, protocol.FeeFromStudentPct)
	if err != nil {
		return err
	}
	next, err := increment(enrollment.SemestersPaid, "semesters paid")
	if err != nil {
		return err
	}
	mint, err := program.Tokens.Mint(feeMint.Key)
	if err != nil {
		return err
	}
	err = program.Tokens.TransferChecked(program.signers, studentFeeAccount.Key, treasury.Key, feeMint.Key, protocolCut, student.Key, mint.Decimals)
	if err != nil {
		return err
	}
	err = program.Tokens.TransferChecked(program.signers, studentFeeAccount.Key, institutionFeeAccount.Key, feeMint.Key, institutionShare, student.Key, mint.Decimals)
	if err != nil {
		return err
	}
	semester := enrollment.SemestersPaid
	enrollment.SemestersPaid = next
	if err := program.Cache.WriteRecord(enrollmentHandle.Key, enrollment); err != nil {
		return err
	}
	program.Logger.Info("Paid semester", "enrollment", enrollmentHandle.Key, "semester", semester,
		"protocol_cut", protocolCut, "institution_share", institutionShare)
	return nil
}

// Unstake releases the credential once every semester is paid and the program duration has passed.
//
// Handles: student (signer), enrollment record, subject record, credential mint, student credential account.
func (program *Program) Unstake() error {
	handles, err := program.accounts(5)
	if err != nil {
		return err
	}
	student, enrollmentHandle, subjectHandle := handles[0], handles[1], handles[2]
	credentialMint, credentialAccount := handles[3], handles[4]

	if err := requireSigner(student); err != nil {
		return err
	}
	enrollment, err := program.enrollment(enrollmentHandle.Key)
	if err != nil {
		return err
	}
	subject, err := program.subject(subjectHandle.Key)
	if err != nil {
		return err
	}
	if err := program.checkEnrollment(student.Key, enrollmentHandle.Key, subjectHandle.Key, enrollment); err != nil {
		return err
	}
	completed, err := increment(subject.MaxSemesterCount, "semester count")
	if err != nil {
		return err
	}
	if enrollment.SemestersPaid != completed {
		return wrap(ErrNotYetEligible, "%d of %d semesters paid", enrollment.SemestersPaid-FirstSemester, subject.MaxSemesterCount)
	}
	required, err := RequiredDuration(subject.MaxSemesterCount, subject.MonthsPerSemester)
	if err != nil {
		return err
	}
	now := program.Clock.Now()
	if !Elapsed(now, enrollment.StartTimestamp, required) {
		return wrap(ErrNotYetEligible, "started at %d, now %d, requires %d seconds", enrollment.StartTimestamp, now, required)
	}

	authority := crypto.NewDerivedAuthority(enrollment.Bump, EnrollmentSeeds(student.Key, subjectHandle.Key)...)
	signers, err := program.signedAs(authority)
	if err != nil {
		return err
	}
	if err := program.Tokens.ThawAccount(signers, credentialAccount.Key, credentialMint.Key, enrollmentHandle.Key); err != nil {
		return err
	}
	if err := program.Tokens.SetFreezeAuthority(signers, credentialAccount.Key, enrollmentHandle.Key, student.Key); err != nil {
		return err
	}
	program.Logger.Info("Released credential", "enrollment", enrollmentHandle.Key, "account", credentialAccount.Key)
	return nil
}

// checkEnrollment proves the enrollment record is the one derived from student and subject.
func (program *Program) checkEnrollment(student, address, subject crypto.Address, enrollment *EnrollmentState) error {
	if enrollment.StudentKey != student {
		return wrap(ErrAccountMismatch, "enrollment %s belongs to %s", address, enrollment.StudentKey)
	}
	return verify(address, enrollment.Bump, EnrollmentSeeds(student, subject))
}
