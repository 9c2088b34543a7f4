package peer

import (
	"fmt"
	"strings"
)

// enc52 writes each byte as two letters from a 52-letter alphabet so tokens
// survive copy/paste and shells without quoting.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var reverse = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		table[alphabet[i]] = int8(i)
	}
	return table
}()

func Encode(data []byte) string {
	var sb strings.Builder
	sb.Grow(2 * len(data))
	for _, b := range data {
		sb.WriteByte(alphabet[b/52])
		sb.WriteByte(alphabet[b%52])
	}
	return sb.String()
}

func Decode(encoded string) ([]byte, error) {
	if len(encoded)%2 != 0 {
		return nil, fmt.Errorf("enc52: odd length %d", len(encoded))
	}

	decoded := make([]byte, len(encoded)/2)
	for i := 0; i < len(encoded); i += 2 {
		high, low := reverse[encoded[i]], reverse[encoded[i+1]]
		if high < 0 || low < 0 {
			return nil, fmt.Errorf("enc52: invalid character at offset %d", i)
		}
		// 255 = 4*52 + 47 is the largest valid pair.
		value := int(high)*52 + int(low)
		if value > 255 {
			return nil, fmt.Errorf("enc52: pair %q at offset %d out of range", encoded[i:i+2], i)
		}
		decoded[i/2] = byte(value)
	}
	return decoded, nil
}
