// Package assistant turns chat messages into mailbox actions.
//
// A turn flows Classifier -> Dispatcher -> reply. The Classifier asks an
// Oracle to map the message, the transcript and a snapshot of the
// ConversationContext onto one Intent with typed Params. The Dispatcher
// runs the intent against the Mailbox and ReplyWriter ports and moves the
// context: listing, searching and summarizing refocus the current email
// and drop any pending draft, drafting stores one, sending clears it.
// The Orchestrator converts every failure into reply text.
package assistant
