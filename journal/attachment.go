/*
 * MIT License
 *
 * Copyright (c) 2024 prinbee authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package journal

import (
	"io"
	"os"
	"runtime"

	"github.com/nabbar/prinbee/errors"
	"golang.org/x/sys/unix"
)

// placeAttachment externalizes src alongside the journal at dest per
// mode. The journal never deletes
// src; it only owns dest.
func placeAttachment(mode AttachmentCopyMode, src, dest string) errors.Error {
	if _, err := os.Lstat(dest); err == nil {
		return errors.New(uint16(ErrorDestinationCollision), ErrorDestinationCollision.Message())
	}

	switch mode {
	case CopySoftlink:
		if err := os.Symlink(src, dest); err != nil {
			return errors.New(uint16(ErrorWrite), err.Error())
		}
		return nil
	case CopyHardlink:
		if err := os.Link(src, dest); err != nil {
			return errors.New(uint16(ErrorWrite), err.Error())
		}
		return nil
	case CopyReflink:
		if e := reflinkCopy(src, dest); e != nil {
			return fullCopy(src, dest)
		}
		return nil
	case CopyFull:
		return fullCopy(src, dest)
	}

	return errors.New(uint16(ErrorUnknownCopyMode), ErrorUnknownCopyMode.Message())
}

func fullCopy(src, dest string) errors.Error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(uint16(ErrorAttachmentSourceMissing), ErrorAttachmentSourceMissing.Message())
		}
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// reflinkCopy attempts a copy-on-write clone via the Linux FICLONE
// ioctl (golang.org/x/sys/unix); any failure (wrong filesystem,
// non-Linux, cross-device) is left to the caller to fall back to a
// full byte copy.
func reflinkCopy(src, dest string) errors.Error {
	if runtime.GOOS != "linux" {
		return errors.New(uint16(ErrorWrite), "reflink not supported on this platform")
	}

	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(uint16(ErrorAttachmentSourceMissing), ErrorAttachmentSourceMissing.Message())
		}
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	defer func() { _ = out.Close() }()

	if err := unix.IoctlFileClone(int(out.Fd()), int(in.Fd())); err != nil {
		_ = os.Remove(dest)
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	return nil
}

// validateAttachmentSource checks that path exists and is a regular
// file, as required before externalizing it.
func validateAttachmentSource(path string) errors.Error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(uint16(ErrorAttachmentSourceMissing), ErrorAttachmentSourceMissing.Message())
		}
		if os.IsPermission(err) {
			return errors.New(uint16(ErrorPermissionDenied), ErrorPermissionDenied.Message())
		}
		return errors.New(uint16(ErrorWrite), err.Error())
	}
	if !info.Mode().IsRegular() {
		return errors.New(uint16(ErrorAttachmentNotRegular), ErrorAttachmentNotRegular.Message())
	}
	return nil
}
