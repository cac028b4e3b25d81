package solana

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/SuperteamDAO/earn-sub007/internal/types"
)

// InstructionPlan is the ordered instruction sequence for one withdrawal,
// plus the fee disclosure reported back to the caller.
type InstructionPlan struct {
	Instructions           []solana.Instruction
	ReceiverAccountExisted bool
	CreationFee            uint64
}

// transferParams is everything the assembler needs, resolved upstream. No
// I/O happens during assembly.
type transferParams struct {
	Sender    solana.PublicKey
	Recipient solana.PublicKey
	Asset     AssetDescriptor
	Amount    uint64 // smallest units, already validated positive

	SenderAccount    AccountRecord
	RecipientAccount AccountRecord

	FeePayer    solana.PublicKey
	FeePayerATA solana.PublicKey
	CreationFee uint64 // smallest units of the asset, 0 when recipient exists
}

type assembler struct {
	cfg Config
}

func newAssembler(cfg Config) *assembler {
	return &assembler{cfg: cfg}
}

// Assemble selects one of three mutually exclusive branches:
//   - native SOL: a single system transfer, nothing else;
//   - token, recipient account exists: compute budget + one transfer;
//   - token, recipient account missing: compute budget + account creation
//     (paid by the fee payer) + fee-recovery transfer + remainder transfer.
//
// Ordering is fixed: compute budget first, creation before anything that
// references the created account, fee recovery before the main transfer.
func (a *assembler) Assemble(p transferParams) (InstructionPlan, error) {
	if p.Asset.Native {
		return InstructionPlan{
			Instructions: []solana.Instruction{
				system.NewTransferInstruction(p.Amount, p.Sender, p.Recipient).Build(),
			},
			// Native accounts implicitly exist; reported permissively.
			ReceiverAccountExisted: true,
			CreationFee:            0,
		}, nil
	}

	ixs := a.computeBudgetInstructions()

	if p.RecipientAccount.Exists {
		ixs = append(ixs, tokenTransferInstruction(
			p.Asset.Program,
			p.SenderAccount.Address,
			p.RecipientAccount.Address,
			p.Sender,
			p.Amount,
		))
		return InstructionPlan{
			Instructions:           ixs,
			ReceiverAccountExisted: true,
			CreationFee:            0,
		}, nil
	}

	// The transfer must never leave the recipient with zero or the sender
	// with a negative residual.
	if p.CreationFee >= p.Amount {
		return InstructionPlan{}, &types.InsufficientAmountError{
			RequestedAmount: p.Amount,
			CreationFee:     p.CreationFee,
			Decimals:        p.Asset.Decimals,
		}
	}

	ixs = append(ixs, createATAInstruction(
		p.FeePayer,
		p.RecipientAccount.Address,
		p.Recipient,
		p.Asset.Mint,
		p.Asset.Program,
	))

	if p.CreationFee > 0 {
		ixs = append(ixs, tokenTransferInstruction(
			p.Asset.Program,
			p.SenderAccount.Address,
			p.FeePayerATA,
			p.Sender,
			p.CreationFee,
		))
	}

	ixs = append(ixs, tokenTransferInstruction(
		p.Asset.Program,
		p.SenderAccount.Address,
		p.RecipientAccount.Address,
		p.Sender,
		p.Amount-p.CreationFee,
	))

	return InstructionPlan{
		Instructions:           ixs,
		ReceiverAccountExisted: false,
		CreationFee:            p.CreationFee,
	}, nil
}

var computeBudgetProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

// computeBudgetInstructions sets the compute unit ceiling and priority fee.
// Instruction types: 2 = SetComputeUnitLimit (u32), 3 = SetComputeUnitPrice
// (u64 micro-lamports), both little-endian.
func (a *assembler) computeBudgetInstructions() []solana.Instruction {
	limitData := make([]byte, 5)
	limitData[0] = 2
	binary.LittleEndian.PutUint32(limitData[1:], a.cfg.ComputeUnitLimit)

	priceData := make([]byte, 9)
	priceData[0] = 3
	binary.LittleEndian.PutUint64(priceData[1:], a.cfg.ComputeUnitPriceMicroLamports)

	return []solana.Instruction{
		solana.NewInstruction(computeBudgetProgramID, []*solana.AccountMeta{}, limitData),
		solana.NewInstruction(computeBudgetProgramID, []*solana.AccountMeta{}, priceData),
	}
}

// createATAInstruction creates an associated token account for any token
// program. The payer funds rent; the owner only receives the account.
func createATAInstruction(
	payer, ataAddress, owner, mint, tokenProgram solana.PublicKey,
) solana.Instruction {
	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: ataAddress, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: false, IsWritable: false},
			{PublicKey: mint, IsSigner: false, IsWritable: false},
			{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
			{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
		},
		[]byte{0}, // instruction discriminator for "Create"
	)
}

// tokenTransferInstruction moves tokens between accounts of the same mint.
// Data layout: discriminator (1 byte, 3 = Transfer) + amount (8 bytes
// little-endian). Identical for legacy SPL and Token-2022.
func tokenTransferInstruction(
	tokenProgram, source, destination, owner solana.PublicKey,
	amount uint64,
) solana.Instruction {
	data := make([]byte, 9)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:], amount)

	return solana.NewInstruction(
		tokenProgram,
		[]*solana.AccountMeta{
			{PublicKey: source, IsSigner: false, IsWritable: true},
			{PublicKey: destination, IsSigner: false, IsWritable: true},
			{PublicKey: owner, IsSigner: true, IsWritable: false},
		},
		data,
	)
}
