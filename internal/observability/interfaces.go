// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Observable is implemented by components that name themselves in records
type Observable interface {
	GetComponentName() string
}
