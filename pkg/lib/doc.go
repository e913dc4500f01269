// Package lib provides a Go SDK for building FAT disk images programmatically.
//
// This package allows applications to build images, prefix files and inspect
// sparse extents without shelling out to the vfatimg CLI binary.
//
// # Quick Start
//
//	client, err := lib.New(lib.Config{Backend: lib.BackendTools})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	img, err := client.Build(ctx, lib.BuildOpts{
//	    SourceDir: "./boot",
//	    Output:    "./boot.img",
//	    Size:      64 * 1024 * 1024,
//	    Label:     "BOOT",
//	})
//
// # Backends
//
// The FAT filesystem and the partition table are created by a backend:
//
//   - [BackendTools]: mkfs.vfat, mcopy and sfdisk from PATH.
//   - [BackendDiskfs]: pure Go, FAT32 only.
//   - [BackendFake]: records the calls, for testing.
//
// # Sparse prefixing
//
// [Client.CopyWithPrefix] copies a file shifted forward by an offset,
// preserving its holes when the filesystem supports it. [Client.Extents]
// lists the data and hole extents of a file.
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: File does not exist.
//   - [ErrAlreadyExists]: The output exists and Force was not set.
//   - [ErrNotValid]: Invalid input.
package lib
