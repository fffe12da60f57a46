package engine

import (
	"fmt"

	"github.com/roach88/craftbeerbot/internal/catalog"
	"github.com/roach88/craftbeerbot/internal/notify"
)

// User-facing messages.
const (
	MsgGoodbye        = "Goodbye"
	MsgNoOrder        = "No beer order in progress"
	MsgNotAvailable   = "Oh no! This beer is not available."
	MsgCodeIncorrect  = "Confirmation code was incorrect. Please try again."
	MsgOrderPlaced    = "I've placed the order"
	MsgOrderFailed    = "The was a problem placing the order. Please try again later."
	MsgUnsupported    = "Sorry, I can't help with that."
	MsgLotsOfBeer     = "Ok, ok. I get it, you want lots of beer. Want me to place the order now?"
	msgOneBeerFormat  = "Ok, so that's 1 case of %s. Should I place the order now?"
	msgTwoBeersFormat = "Ok, so that's 1 case of %s and 1 case of %s. Shall I place the order now?"
	msgSMSPrompt      = "I've texted you a 4 digit confirmation code. What is it?"
	msgPushPrompt     = "I've sent a 4 digit confirmation code to your device. What is it?"
	msgSMSSendFailed  = "There was an issue sending the confirmation code. Please try again later."
	msgPushSendFailed = "There was an issue sending the confirmation notification. Please try again later."
)

// ConfirmationMessage summarises the order before asking to place it.
// It depends only on the number of beers; callers pass a non-empty order.
func ConfirmationMessage(beers []catalog.Entry) string {
	switch len(beers) {
	case 1:
		return fmt.Sprintf(msgOneBeerFormat, beers[0].Name)
	case 2:
		return fmt.Sprintf(msgTwoBeersFormat, beers[0].Name, beers[1].Name)
	default:
		return MsgLotsOfBeer
	}
}

// CodePrompt asks for the code just sent over ch.
func CodePrompt(ch notify.Channel) string {
	if ch == notify.ChannelPush {
		return msgPushPrompt
	}
	return msgSMSPrompt
}

// SendFailedMessage reports a failed delivery over ch.
func SendFailedMessage(ch notify.Channel) string {
	if ch == notify.ChannelPush {
		return msgPushSendFailed
	}
	return msgSMSSendFailed
}
