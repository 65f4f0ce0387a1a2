// Package repositories defines the storage-agnostic port every use case
// talks to, and the codecs records pass through at the storage boundary.
//
// # Overview
//
// Repository[T] is the generic contract (GetAll, GetByID, Create, Update,
// Delete). Per-entity ports add the secondary lookups the services need
// (accounts by owner, payments by template, ...). They are implemented once,
// here, on top of any Repository[T] by filtering GetAll, so a backend only
// has to provide the five generic operations.
//
// Two backends live in sub-packages:
//
//   - local: whole-collection JSON snapshot in a kv.Store, synchronous.
//   - remote: in-memory cache loaded once from a docstore.Store, writes
//     fanned out asynchronously through a writequeue.Queue.
//
// # Consistency
//
// Both backends make a Create/Update/Delete visible to the next read in the
// same process immediately, whether or not the durable write has finished.
//
// Typical Usage
//
//	set := local.NewSet(store, "famledger", repositories.DefaultCodecs(nil), logger)
//	accounts, _ := set.BankAccounts.GetByOwnerID(ctx, ownerID)
package repositories
