// fdconn.go - wrap a raw fd as a *net.UnixConn
package wire

import (
	"fmt"
	"net"
	"os"
)

func fdToUnixConn(fd int) (*net.UnixConn, error) {
	f := os.NewFile(uintptr(fd), "texpresso-socket")
	conn, err := net.FileConn(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("wire: fd %d is not a unix socket", fd)
	}
	// net.FileConn dup'd the fd into conn; close our copy of the os.File.
	f.Close()
	return uc, nil
}

// ChannelFromFD wraps a raw file descriptor (e.g. one relayed through a
// CHLD query's SCM_RIGHTS payload) as a Channel.
func ChannelFromFD(fd int) (*Channel, error) {
	conn, err := fdToUnixConn(fd)
	if err != nil {
		return nil, err
	}
	return NewChannel(conn), nil
}
