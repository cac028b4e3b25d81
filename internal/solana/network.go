package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/SuperteamDAO/earn-sub007/internal/metrics"
	"github.com/SuperteamDAO/earn-sub007/internal/types"
	"github.com/SuperteamDAO/earn-sub007/internal/util"
)

const (
	branchNative      = "native"
	branchToken       = "token"
	branchTokenCreate = "token_create"
)

// Network is the withdrawal construction facade. It composes the classifier,
// account resolver, fee calculator, assembler, builder and poller into the
// single Withdraw operation.
type Network struct {
	cfg        Config
	sender     txSender
	classifier *classifier
	resolver   *accountResolver
	feeCalc    *feeCalculator
	assembler  *assembler
	builder    *txBuilder
	poller     *confirmationPoller
	feePayer   solana.PrivateKey
	logger     *logrus.Logger
}

func NewNetwork(
	ctx context.Context,
	cfg Config,
	prices PriceSource,
	cache ClassifierCache,
	feePayer solana.PrivateKey,
	logger *logrus.Logger,
) (*Network, error) {
	rpcClient := rpc.New(cfg.RpcURL)

	_, err := rpcClient.GetVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Solana RPC: %w", err)
	}

	return &Network{
		cfg:        cfg,
		sender:     rpcClient,
		classifier: newClassifier(rpcClient, cache),
		resolver:   newAccountResolver(rpcClient),
		feeCalc:    newFeeCalculator(prices, cfg.AtaCreationCostLamports),
		assembler:  newAssembler(cfg),
		builder:    newTxBuilder(rpcClient, feePayer),
		poller:     newConfirmationPoller(rpcClient, cfg.PollInterval, cfg.PollMaxAttempts),
		feePayer:   feePayer,
		logger:     logger,
	}, nil
}

// Withdraw builds a partially signed withdrawal transaction for the sender.
// Nothing is broadcast here except, when needed, the fee payer's own token
// account provisioning; the returned transaction awaits the sender's
// signature out of band.
func (n *Network) Withdraw(ctx context.Context, sender solana.PublicKey, req types.WithdrawalRequest) (types.WithdrawalEnvelope, error) {
	started := time.Now()
	defer func() {
		metrics.ObserveConstruction(time.Since(started))
	}()

	recipient, err := solana.PublicKeyFromBase58(req.RecipientAddress)
	if err != nil {
		return types.WithdrawalEnvelope{}, &types.ValidationError{Field: "recipientAddress", Reason: "not a valid address"}
	}

	asset, err := n.classifier.Classify(ctx, req.AssetAddress)
	if err != nil {
		return types.WithdrawalEnvelope{}, err
	}

	amount, err := n.amountInBaseUnits(req.Amount, asset.Decimals)
	if err != nil {
		return types.WithdrawalEnvelope{}, err
	}

	log := n.logger.WithFields(logrus.Fields{
		"sender":    sender.String(),
		"recipient": recipient.String(),
		"asset":     req.AssetAddress,
		"amount":    amount,
	})

	if asset.Native {
		return n.withdrawNative(ctx, log, sender, recipient, asset, amount)
	}
	return n.withdrawToken(ctx, log, sender, recipient, asset, amount)
}

func (n *Network) withdrawNative(
	ctx context.Context,
	log *logrus.Entry,
	sender, recipient solana.PublicKey,
	asset AssetDescriptor,
	amount uint64,
) (types.WithdrawalEnvelope, error) {
	plan, err := n.assembler.Assemble(transferParams{
		Sender:    sender,
		Recipient: recipient,
		Asset:     asset,
		Amount:    amount,
	})
	if err != nil {
		metrics.RecordWithdrawal(branchNative, "error")
		return types.WithdrawalEnvelope{}, err
	}

	serialized, err := n.builder.BuildPartiallySigned(ctx, plan.Instructions)
	if err != nil {
		metrics.RecordWithdrawal(branchNative, "error")
		return types.WithdrawalEnvelope{}, err
	}

	metrics.RecordWithdrawal(branchNative, "success")
	log.Info("built native withdrawal transaction")

	return types.WithdrawalEnvelope{
		SerializedTransaction:  serialized,
		ReceiverAccountExisted: plan.ReceiverAccountExisted,
		AccountCreationCost:    plan.CreationFee,
	}, nil
}

func (n *Network) withdrawToken(
	ctx context.Context,
	log *logrus.Entry,
	sender, recipient solana.PublicKey,
	asset AssetDescriptor,
	amount uint64,
) (types.WithdrawalEnvelope, error) {
	branch := branchToken

	// Sender and recipient existence checks are independent; run them
	// concurrently. Correctness does not depend on their ordering.
	var senderAcc, recipientAcc AccountRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		senderAcc, err = n.resolver.Resolve(gctx, sender, asset.Mint, asset.Program)
		return err
	})
	g.Go(func() error {
		var err error
		recipientAcc, err = n.resolver.Resolve(gctx, recipient, asset.Mint, asset.Program)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordWithdrawal(branch, "error")
		return types.WithdrawalEnvelope{}, err
	}

	if !senderAcc.Exists {
		// The transfer instruction will fail on-chain; acceptable, the
		// sender simply has nothing to move. Worth noting for support.
		log.Warn("sender has no token account for this mint")
	}

	var creationFee uint64
	var feePayerATA solana.PublicKey
	if !recipientAcc.Exists {
		branch = branchTokenCreate

		fee, err := n.feeCalc.CreationFee(ctx, asset.Mint, asset.Decimals)
		if err != nil {
			metrics.RecordWithdrawal(branch, "error")
			return types.WithdrawalEnvelope{}, err
		}
		creationFee = fee

		if creationFee >= amount {
			metrics.RecordWithdrawal(branch, "rejected")
			return types.WithdrawalEnvelope{}, &types.InsufficientAmountError{
				RequestedAmount: amount,
				CreationFee:     creationFee,
				Decimals:        asset.Decimals,
			}
		}

		if creationFee > 0 {
			ata, err := n.ensureFeePayerATA(ctx, log, asset)
			if err != nil {
				metrics.RecordWithdrawal(branch, "error")
				return types.WithdrawalEnvelope{}, err
			}
			feePayerATA = ata
		}
	}

	plan, err := n.assembler.Assemble(transferParams{
		Sender:           sender,
		Recipient:        recipient,
		Asset:            asset,
		Amount:           amount,
		SenderAccount:    senderAcc,
		RecipientAccount: recipientAcc,
		FeePayer:         n.feePayer.PublicKey(),
		FeePayerATA:      feePayerATA,
		CreationFee:      creationFee,
	})
	if err != nil {
		metrics.RecordWithdrawal(branch, "error")
		return types.WithdrawalEnvelope{}, err
	}

	if !plan.ReceiverAccountExisted {
		metrics.RecordATACreation("recipient")
	}

	serialized, err := n.builder.BuildPartiallySigned(ctx, plan.Instructions)
	if err != nil {
		metrics.RecordWithdrawal(branch, "error")
		return types.WithdrawalEnvelope{}, err
	}

	metrics.RecordWithdrawal(branch, "success")
	log.WithField("creation_fee", plan.CreationFee).Info("built token withdrawal transaction")

	return types.WithdrawalEnvelope{
		SerializedTransaction:  serialized,
		ReceiverAccountExisted: plan.ReceiverAccountExisted,
		AccountCreationCost:    plan.CreationFee,
	}, nil
}

// ensureFeePayerATA makes sure the fee payer has its own token account for
// the mint, so the fee-recovery transfer has somewhere to land. This is the
// one transaction the subsystem broadcasts itself: fully self-signed, then
// polled to finality. Past this point cancellation no longer unwinds; the
// side transaction belongs to the chain.
func (n *Network) ensureFeePayerATA(ctx context.Context, log *logrus.Entry, asset AssetDescriptor) (solana.PublicKey, error) {
	owner := n.feePayer.PublicKey()

	record, err := n.resolver.Resolve(ctx, owner, asset.Mint, asset.Program)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if record.Exists {
		return record.Address, nil
	}

	createIx := createATAInstruction(owner, record.Address, owner, asset.Mint, asset.Program)

	tx, err := n.builder.BuildSelfSigned(ctx, []solana.Instruction{createIx})
	if err != nil {
		return solana.PublicKey{}, err
	}

	sig, err := n.sender.SendTransaction(ctx, tx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to broadcast fee payer account creation: %w: %w",
			types.ErrUpstreamUnavailable, err)
	}

	log.WithField("signature", sig.String()).Info("provisioning fee payer token account")
	metrics.RecordATACreation("fee_payer")

	outcome, err := n.poller.WaitConfirmed(ctx, sig)
	if outcome != "" {
		metrics.RecordConfirmationPoll(string(outcome))
	}
	if err != nil {
		return solana.PublicKey{}, err
	}

	return record.Address, nil
}

func (n *Network) amountInBaseUnits(amount string, decimals uint8) (uint64, error) {
	base, err := util.ToBaseUnits(amount, int(decimals))
	if err != nil {
		return 0, &types.ValidationError{Field: "amount", Reason: err.Error()}
	}

	if base.Sign() <= 0 {
		return 0, &types.ValidationError{Field: "amount", Reason: "must be positive and at least one smallest unit"}
	}

	if !base.IsUint64() {
		return 0, &types.ValidationError{Field: "amount", Reason: "exceeds representable range"}
	}

	return base.Uint64(), nil
}
