package bridge

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/eigerco/erarewards/internal/crypto"
)

const (
	// MaxPayloadSize bounds the call data of an outbound message.
	MaxPayloadSize = 1024
	// MaxGasLimit is the largest gas limit a message may request.
	MaxGasLimit = 30_000_000
)

const rewardsABI = `[{"type":"function","name":"submitRewards","inputs":[{"name":"root","type":"bytes32"}],"outputs":[]}]`

var (
	rewardsContract = mustParseABI(rewardsABI)
	submitRewards   = rewardsContract.Methods["submitRewards"]
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// MessageID identifies a delivered message.
type MessageID = crypto.Hash

// Message is a contract call on the destination chain.
type Message struct {
	Destination common.Address
	Payload     []byte
	GasLimit    uint64
}

// Encode returns the RLP encoding of the message.
func (m Message) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(m)
}

// DecodeMessage parses an RLP encoded message.
func DecodeMessage(b []byte) (Message, error) {
	var m Message
	if err := rlp.DecodeBytes(b, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return m, nil
}

// Ticket is a validated message ready for delivery.
type Ticket struct {
	Message Message
	Nonce   uint64
	Encoded []byte
}

// SubmitRewardsSelector returns the four byte selector of submitRewards(bytes32).
func SubmitRewardsSelector() []byte {
	return append([]byte(nil), submitRewards.ID...)
}

// EncodeSubmitRewards builds the call data carrying a rewards Merkle root.
func EncodeSubmitRewards(root crypto.Hash) ([]byte, error) {
	return rewardsContract.Pack(submitRewards.Name, [32]byte(root))
}

// DecodeSubmitRewards extracts the Merkle root from submitRewards call data.
func DecodeSubmitRewards(payload []byte) (crypto.Hash, error) {
	if len(payload) < 4 || string(payload[:4]) != string(submitRewards.ID) {
		return crypto.Hash{}, ErrUnknownSelector
	}
	values, err := submitRewards.Inputs.Unpack(payload[4:])
	if err != nil {
		return crypto.Hash{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	root, ok := values[0].([32]byte)
	if !ok {
		return crypto.Hash{}, ErrMalformedMessage
	}
	return root, nil
}

// validateMessage holds the checks shared by every sender.
func validateMessage(m Message) error {
	if m.Destination == (common.Address{}) {
		return ErrZeroDestination
	}
	if len(m.Payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(m.Payload))
	}
	if m.GasLimit == 0 || m.GasLimit > MaxGasLimit {
		return fmt.Errorf("%w: %d", ErrInvalidGasLimit, m.GasLimit)
	}
	return nil
}
