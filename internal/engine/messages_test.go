package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/notify"
)

func TestConfirmationMessage(t *testing.T) {
	ipa := catalog.Entry{ID: 133, Name: "Sambrooks Battersea IPA"}
	pale := catalog.Entry{ID: 177, Name: "Yenda Pale Ale"}
	lager := catalog.Entry{ID: 176, Name: "Yenda Crisp Lager"}

	tests := []struct {
		name  string
		beers []catalog.Entry
		want  string
	}{
		{
			name:  "one beer",
			beers: []catalog.Entry{pale},
			want:  "Ok, so that's 1 case of Yenda Pale Ale. Should I place the order now?",
		},
		{
			name:  "two beers",
			beers: []catalog.Entry{ipa, pale},
			want:  "Ok, so that's 1 case of Sambrooks Battersea IPA and 1 case of Yenda Pale Ale. Shall I place the order now?",
		},
		{
			name:  "three beers",
			beers: []catalog.Entry{ipa, pale, lager},
			want:  "Ok, ok. I get it, you want lots of beer. Want me to place the order now?",
		},
		{
			name:  "many beers",
			beers: []catalog.Entry{ipa, pale, lager, ipa, pale},
			want:  "Ok, ok. I get it, you want lots of beer. Want me to place the order now?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfirmationMessage(tt.beers))
		})
	}
}

func TestChannelMessages(t *testing.T) {
	assert.Equal(t, "I've texted you a 4 digit confirmation code. What is it?", CodePrompt(notify.ChannelSMS))
	assert.Equal(t, "I've sent a 4 digit confirmation code to your device. What is it?", CodePrompt(notify.ChannelPush))
	assert.Equal(t, "There was an issue sending the confirmation code. Please try again later.", SendFailedMessage(notify.ChannelSMS))
	assert.Equal(t, "There was an issue sending the confirmation notification. Please try again later.", SendFailedMessage(notify.ChannelPush))
}
