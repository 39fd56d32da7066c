// Copyright (C) 2015-2016  Nexedi SA and Contributors.
//                          Kirill Smelkov <kirr@nexedi.com>
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.

package refs

import "fmt"

// InvalidNameError is returned by operations that require a well-formed ref
// name (per CheckRefFormat) when given one that is not.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("refs: invalid ref name %q", e.Name)
}

// NotFoundError reports that no ref by that name exists in a container -
// the Go counterpart of dulwich's KeyError for indexed access.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("refs: %q: not found", e.Name)
}
