/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

// Each prinbee package that registers its own error codes picks a unique
// Min* range here and declares its codes as `iota + MinPkgXxx`, following
// the same layout as every leaf package in this repo's dependency chain.
const (
	MinPkgBigInt    = 100
	MinPkgWire      = 200
	MinPkgJournal   = 300
	MinPkgContext   = 400
	MinPkgCluster   = 500
	MinPkgBus       = 600
	MinPkgCluck     = 700
	MinPkgTransport = 800
	MinPkgDaemon    = 900
	MinPkgProxy     = 1000
	MinPkgClient    = 1100
	MinPkgConfig    = 1200

	MinAvailable = 2000
)
