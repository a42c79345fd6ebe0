// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// EncryptedEntry is one journal entry as the backend sees it. The IV is fresh
// for every encryption. KeyVersion names the key generation that produced
// the ciphertext.
type EncryptedEntry struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	Sealed                   // iv, ciphertext
	KeyVersion SchemeVersion `json:"keyVersion"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
