package nostr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNpubNsecVectors(t *testing.T) {
	assert := assert.New(t)

	npub, err := EncodePublicKey("3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d")
	assert.NoError(err)
	assert.Equal("npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6", npub)

	nsec, err := EncodePrivateKey("67dea2ed018072d675f5415ecfaed7d2597555e202d85b3d65ea4e58d2d92ffa")
	assert.NoError(err)
	assert.Equal("nsec1vl029mgpspedva04g90vltkh6fvh240zqtv9k0t9af8935ke9laqsnlfe5", nsec)

	prefix, val, err := Decode(npub)
	assert.NoError(err)
	assert.Equal(PrefixNpub, prefix)
	assert.Equal("3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d", val)
}

func TestNeventRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ptr := EventPointer{
		ID:     "be8e52c0c70ec5390779202b27d9d6fc7286d0e9a2bc91c001d6838d40bafa4a",
		Relays: []string{"wss://yabu.me/", "wss://relay-jp.nostr.wirednet.jp/"},
		Author: "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d",
		Kind:   KindBadgeAward,
	}
	code, err := EncodeEvent(ptr)
	require.NoError(t, err)
	assert.Regexp(`^nevent1`, code)

	prefix, val, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(PrefixNevent, prefix)
	decoded := val.(EventPointer)
	assert.Equal(ptr.ID, decoded.ID)
	assert.Equal(ptr.Relays, decoded.Relays)
	assert.Equal(ptr.Author, decoded.Author)
	assert.Zero(decoded.Kind)
}

func TestNaddrRoundTrip(t *testing.T) {
	assert := assert.New(t)

	ptr := EntityPointer{
		PublicKey:  "3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d",
		Kind:       KindBadgeDefinition,
		Identifier: "unyu-badge",
		Relays:     []string{"wss://yabu.me/"},
	}
	code, err := EncodeEntity(ptr)
	require.NoError(t, err)

	prefix, val, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(PrefixNaddr, prefix)
	assert.Equal(ptr, val.(EntityPointer))
	assert.Equal("30009:3bf0c63fcb93463407af97a5e5ee64fa883d107ef9e558472c4eb9aaaefa459d:unyu-badge", ptr.AsTagReference())
}

func TestDecodeInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{
		"",
		"npub1",
		"npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w7",
		"hello world",
	} {
		_, _, err := Decode(s)
		assert.ErrorIs(err, ErrInvalidEntity, s)
	}

	_, err := EncodeNote("zz")
	assert.Error(err)
}

func TestEntityRegex(t *testing.T) {
	assert := assert.New(t)

	m := EntityRegex.FindStringSubmatch("見て nostr:npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6 やで")
	require.NotNil(t, m)
	assert.Equal("npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6", m[1])
}
