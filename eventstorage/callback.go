package eventstorage

import "fmt"

// DataWriterCallBack is fired by the writer whenever a file closes. It
// mirrors the original DataWriterCallBack.h registrable-object design
// rather than a bare function type, so implementations can carry their own
// state (e.g. a catalog client).
type DataWriterCallBack interface {
	FileWasClosed(fileName string, meta Metadata, trailer Trailer)
}

// DataWriterCallBackFunc adapts a plain function to DataWriterCallBack.
type DataWriterCallBackFunc func(fileName string, meta Metadata, trailer Trailer)

func (f DataWriterCallBackFunc) FileWasClosed(fileName string, meta Metadata, trailer Trailer) {
	f(fileName, meta, trailer)
}

// CallbackHandle identifies a registered callback for later Unregister
// calls. Registered callbacks may not be comparable (e.g. a
// DataWriterCallBackFunc closure), so the registry hands back an opaque
// handle rather than requiring callers to re-present the callback value.
type CallbackHandle int

// callbackRegistry maintains a registration-ordered list of callbacks,
// firing them serially within a file close.
type callbackRegistry struct {
	callbacks map[CallbackHandle]DataWriterCallBack
	order     []CallbackHandle
	next      CallbackHandle
}

func (r *callbackRegistry) register(cb DataWriterCallBack) (CallbackHandle, error) {
	if cb == nil {
		return 0, fmt.Errorf("eventstorage: cannot register a nil callback")
	}
	if r.callbacks == nil {
		r.callbacks = make(map[CallbackHandle]DataWriterCallBack)
	}

	r.next++
	handle := r.next
	r.callbacks[handle] = cb
	r.order = append(r.order, handle)

	return handle, nil
}

func (r *callbackRegistry) unregister(handle CallbackHandle) {
	if _, ok := r.callbacks[handle]; !ok {
		return
	}
	delete(r.callbacks, handle)
	for i, h := range r.order {
		if h == handle {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *callbackRegistry) fire(fileName string, meta Metadata, trailer Trailer) {
	for _, handle := range r.order {
		r.callbacks[handle].FileWasClosed(fileName, meta, trailer)
	}
}
