package apr

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"positionScope/internal/model"
)

// Fingerprint hashes the identity and values of every event with Keccak-256.
// Any added, removed or edited event changes the result.
func Fingerprint(events []model.PositionEvent) common.Hash {
	sorted := model.SortEvents(events)
	chunks := make([][]byte, 0, len(sorted))
	for _, ev := range sorted {
		chunks = append(chunks, encodeEvent(ev))
	}
	return crypto.Keccak256Hash(chunks...)
}

func encodeEvent(ev model.PositionEvent) []byte {
	buf := make([]byte, 0, 192)
	buf = append(buf, ev.PositionID...)
	buf = append(buf, '|')
	buf = append(buf, ev.Type...)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, ev.BlockNumber, 10)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, ev.TxIndex, 10)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, ev.LogIndex, 10)
	buf = append(buf, '|')
	buf = append(buf, ev.TxHash...)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, ev.Timestamp.UnixNano(), 10)
	for _, v := range []*big.Int{ev.LiquidityDelta, ev.ValueInQuote, ev.FeeValueInQuote, ev.CostBasisAfter} {
		buf = append(buf, '|')
		if v != nil {
			buf = v.Append(buf, 10)
		}
	}
	buf = append(buf, '|')
	buf = append(buf, ev.Confidence...)
	buf = append(buf, '\n')
	return buf
}
