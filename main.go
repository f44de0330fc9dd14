// main.go - End-to-end governance round demo.
//
// Runs one full round against a fresh on-disk state: register a DAO, open a
// proposal, collect five anonymous votes in parallel, aggregate the tally
// homomorphically and execute the proposal against the treasury. Groth16
// keys are generated on first run and reused afterwards.

package main

import (
	"errors"
	"flag"
	"math/big"
	"os"
	"path/filepath"
	"sync"

	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"

	"darkdao/internal/dao"
	"darkdao/internal/relations/exec"
	"darkdao/internal/relations/propose"
	"darkdao/internal/relations/vote"
)

const registryFile = "registry.json"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	stateDir := flag.String("state", "state", "directory for groth16 keys and the registry snapshot")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}
	logger.Set(log)
	if err := run(*stateDir); err != nil {
		log.Fatal().Err(err).Msg("governance round failed")
	}
}

func run(stateDir string) error {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return err
	}

	// 1) Compile the three relations and set up (or reload) their keys.
	log.Info().Msg("compiling relations")
	proposeCCS, err := dao.CompileRelation(&propose.Circuit{})
	if err != nil {
		return err
	}
	voteCCS, err := dao.CompileRelation(&vote.Circuit{})
	if err != nil {
		return err
	}
	execCCS, err := dao.CompileRelation(&exec.Circuit{})
	if err != nil {
		return err
	}
	log.Info().
		Int("propose", proposeCCS.GetNbConstraints()).
		Int("vote", voteCCS.GetNbConstraints()).
		Int("exec", execCCS.GetNbConstraints()).
		Msg("relations compiled")

	proposePk, proposeVk, err := dao.SetupOrLoadKeys(proposeCCS,
		filepath.Join(stateDir, "propose.pk"), filepath.Join(stateDir, "propose.vk"))
	if err != nil {
		return err
	}
	votePk, voteVk, err := dao.SetupOrLoadKeys(voteCCS,
		filepath.Join(stateDir, "vote.pk"), filepath.Join(stateDir, "vote.vk"))
	if err != nil {
		return err
	}
	execPk, execVk, err := dao.SetupOrLoadKeys(execCCS,
		filepath.Join(stateDir, "exec.pk"), filepath.Join(stateDir, "exec.vk"))
	if err != nil {
		return err
	}
	log.Info().Msg("groth16 keys ready")

	// 2) Found the DAO and register its bulla.
	daoKey, err := dao.GenerateKeypair()
	if err != nil {
		return err
	}
	daoX, daoY := daoKey.PublicCoords()
	params := &dao.DaoParams{
		ProposerLimit: 10,
		Quorum:        3,
		ApprovalRatio: dao.ApprovalRatio{Num: 1, Denom: 2},
		GovTokenID:    big.NewInt(1001),
		PublicKeyX:    daoX,
		PublicKeyY:    daoY,
		BullaBlind:    dao.RandomField(),
	}
	daoBulla, err := params.Bulla()
	if err != nil {
		return err
	}

	reg := dao.NewRegistry()
	leafPos, err := reg.RegisterDao(daoBulla)
	if err != nil {
		return err
	}
	log.Info().Str("bulla", daoBulla.String()).Int("leaf", leafPos).Msg("dao registered")

	// 3) A member above the proposer limit opens a proposal.
	destKey, err := dao.GenerateKeypair()
	if err != nil {
		return err
	}
	destX, destY := destKey.PublicCoords()
	proposal := &dao.ProposalParams{
		DestX:   destX,
		DestY:   destY,
		Amount:  250,
		Serial:  dao.RandomField(),
		TokenID: big.NewInt(2002),
		Blind:   dao.RandomField(),
	}

	path, err := reg.MembershipPath(leafPos)
	if err != nil {
		return err
	}
	proposeTx, err := propose.Prove(&propose.Witness{
		Dao:          params,
		LeafPosition: leafPos,
		Path:         path,
		Proposal:     proposal,
		TotalFunds:   42, // proposer's balance, above the limit of 10
		FundsBlind:   dao.RandomScalar(),
		TokenBlind:   dao.RandomField(),
	}, reg.Root(), proposeCCS, proposePk)
	if err != nil {
		return err
	}
	if err := propose.Verify(proposeTx, proposeVk); err != nil {
		return err
	}
	if err := propose.CheckRoot(proposeTx, reg); err != nil {
		return err
	}
	proposalBulla, _ := new(big.Int).SetString(proposeTx.ProposalBulla, 10)
	if err := reg.OpenProposal(proposalBulla); err != nil {
		return err
	}
	log.Info().Str("bulla", proposeTx.ProposalBulla).Msg("proposal accepted")

	// Deliver the proposal parameters to the members as an encrypted note
	// and check a recipient can match it to the on-ledger bulla.
	note, err := dao.EncryptNote(proposal, daoKey.Pk)
	if err != nil {
		return err
	}
	if _, ok := dao.TryDecryptNote(note, daoKey, daoBulla, proposalBulla); !ok {
		return errors.New("note does not open to the published proposal")
	}
	log.Info().Msg("proposal note delivered")

	// 4) Five voters prove in parallel: yes, yes, yes, no, no, weight 1 each.
	options := []uint64{1, 1, 1, 0, 0}
	voteTxs := make([]*vote.VoteTx, len(options))
	records := make([]*dao.VoteRecord, len(options))
	voteBlinds := make([]*bls12377_fr.Element, len(options))
	valueBlinds := make([]*bls12377_fr.Element, len(options))
	errs := make([]error, len(options))

	var wg sync.WaitGroup
	for i, opt := range options {
		wg.Add(1)
		go func(i int, opt uint64) {
			defer wg.Done()
			voteBlinds[i] = dao.RandomScalar()
			valueBlinds[i] = dao.RandomScalar()
			voteTxs[i], records[i], errs[i] = vote.Prove(&vote.Witness{
				Dao:        params,
				Proposal:   proposal,
				VoteOption: opt,
				VoteBlind:  voteBlinds[i],
				Value:      1,
				ValueBlind: valueBlinds[i],
				TokenBlind: dao.RandomField(),
			}, voteCCS, votePk)
		}(i, opt)
	}
	wg.Wait()
	for i := range options {
		if errs[i] != nil {
			return errs[i]
		}
		if err := vote.Verify(voteTxs[i], voteVk); err != nil {
			return err
		}
	}
	log.Info().Int("votes", len(options)).Msg("votes verified")

	// 5) Aggregate the tally from the public vote records. The vote options
	// stay hidden; only the commitment sums leave this step.
	tally, err := dao.Aggregate(proposalBulla, records)
	if err != nil {
		return err
	}
	log.Info().Int("count", tally.Count).Msg("tally aggregated")

	// The executor knows the openings: summed votes and summed blinds.
	var winVotes, totalVotes uint64
	winBlind := new(bls12377_fr.Element)
	totalBlind := new(bls12377_fr.Element)
	for i, opt := range options {
		winVotes += opt
		totalVotes++
		winBlind.Add(winBlind, voteBlinds[i])
		totalBlind.Add(totalBlind, valueBlinds[i])
	}

	// 6) Execute: quorum 3 <= 5, ratio 3/5 >= 1/2.
	execTx, err := exec.Prove(&exec.Witness{
		Dao:             params,
		Proposal:        proposal,
		WinVotes:        winVotes,
		TotalVotes:      totalVotes,
		WinVotesBlind:   winBlind,
		TotalVotesBlind: totalBlind,
		InputValue:      1000,
		InputValueBlind: dao.RandomScalar(),
		UserSerial:      dao.RandomField(),
		UserCoinBlind:   dao.RandomField(),
		DaoSerial:       dao.RandomField(),
		DaoCoinBlind:    dao.RandomField(),
		DaoSpendHook:    big.NewInt(110),
		UserSpendHook:   big.NewInt(0),
		UserData:        big.NewInt(0),
	}, execCCS, execPk)
	if err != nil {
		return err
	}
	if err := exec.Verify(execTx, execVk); err != nil {
		return err
	}
	if !exec.MatchesTally(execTx, tally) {
		return errors.New("declared tally does not match the vote record sums")
	}

	coin0, _ := new(big.Int).SetString(execTx.Coin0, 10)
	coin1, _ := new(big.Int).SetString(execTx.Coin1, 10)
	if err := reg.ExecuteProposal(proposalBulla, coin0, coin1); err != nil {
		return err
	}
	log.Info().
		Str("coin0", execTx.Coin0).
		Str("coin1", execTx.Coin1).
		Msg("proposal executed")

	// 7) Persist the registry snapshot.
	regPath := filepath.Join(stateDir, registryFile)
	if err := reg.SaveToFile(regPath); err != nil {
		return err
	}
	log.Info().Str("path", regPath).Msg("registry saved")
	return nil
}
