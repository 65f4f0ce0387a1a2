// Package sharing lets a data owner grant other principals, identified by
// e-mail, access to the owner's books. A share is kept in two places: the
// reverse index (email -> owner) used at sign-in and the owner's list of
// shared e-mails; both change together.
package sharing
