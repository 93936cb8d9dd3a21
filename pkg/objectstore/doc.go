// Package objectstore persists user-uploaded profile images in a private
// S3-compatible bucket.
//
// Objects are keyed {ownerID}/profile/{uuid}{ext} so one listing call can
// find every image a user ever uploaded. The bucket is private; reads go
// through short-lived presigned URLs. Deletes are best-effort by contract:
// callers log failures instead of propagating them.
package objectstore
