// Copyright 2026 The StrataFS Authors
// SPDX-License-Identifier: Apache-2.0

// Stratafs is the administration tool for the repository store: it
// registers repositories, imports directory trees as commits, and
// inspects what the mount will serve.
//
// The ls and cat commands resolve through the same path translation
// the FUSE mount uses, so their output matches what a reader at the
// mountpoint sees.
package main
