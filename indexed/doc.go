package indexed

/*
Package indexed implements the two persistent tiers of the update store: a
recent tier (Future) of not yet compacted updates ordered by write sequence
number, and a historical tier (Trace) of compacted updates ordered by logical
time. Both tiers keep only bookkeeping in memory; every batch of
(key, value, time, diff) updates lives as an immutable blob in a write-once
storage.Blob, reached through a BlobCache that handles encoding, compression
and sharing of decoded batches.

The shape of the problem is the classic LSM split. A single writer drains
updates out of its front end buffer and appends them to the Future in strict
SeqNo order. Periodically it seals a range of times and migrates those updates
into the Trace, appending in strict Ts order, and later still it advances the
Trace's since frontier to license (logical) compaction of distinctions below
it. None of that scheduling lives here: this package only enforces the
invariants each operation must uphold, and refuses, without mutating anything,
any call that would break them.

Reads never coordinate with the writer. A snapshot captures pointers to the
immutable decoded batches at construction and stays consistent forever after,
however far the writer has moved on. Snapshot draining yields batches most
recently appended first; consumers must treat the drained contents as an
unordered collection and never infer time order from drain order.

Crash recovery persists only the bookkeeping: each tier serializes to a small
CBOR meta record (see FutureMeta, TraceMeta) from which an identical tier is
rehydrated. Batch payloads need no recovery, the blob store already has them.
*/
