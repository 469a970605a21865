// channel.go - length-framed duplex protocol channel (§6.1)
package wire

import (
	"bufio"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Handshake strings exchanged when a worker process is spawned (§4.7.1, §6.1).
const (
	HandshakeServer = "TEXPRESSOS01"
	HandshakeClient = "TEXPRESSOC01"
)

// Tag is a four-byte ASCII message tag (e.g. "OPEN", "READ", "CHLD").
type Tag [4]byte

func NewTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string { return string(t[:]) }

// Channel is a length-framed duplex message stream between the executor and
// a worker, carried over a Unix domain socket so that CHLD's out-of-band
// file descriptor can ride alongside a regular payload (§4.7.2, §6.1).
type Channel struct {
	conn *net.UnixConn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewChannel wraps an already-connected Unix domain socket.
func NewChannel(conn *net.UnixConn) *Channel {
	return &Channel{conn: conn, r: bufio.NewReaderSize(conn, 4096), w: bufio.NewWriterSize(conn, 4096)}
}

// Conn exposes the underlying socket, e.g. for setting read deadlines used
// by HasPendingQuery.
func (c *Channel) Conn() *net.UnixConn { return c.conn }

// Close releases the underlying socket.
func (c *Channel) Close() error { return c.conn.Close() }

// HandshakeAsServer performs the parent side of the handshake: write
// HandshakeServer, then read back exactly len(HandshakeClient) bytes and
// compare (§4.7.1 step 3).
func (c *Channel) HandshakeAsServer() error {
	if _, err := c.w.WriteString(HandshakeServer); err != nil {
		return err
	}
	if err := c.w.Flush(); err != nil {
		return err
	}
	buf := make([]byte, len(HandshakeClient))
	if _, err := readFull(c.r, buf); err != nil {
		return fmt.Errorf("wire: handshake read: %w", err)
	}
	if string(buf) != HandshakeClient {
		return fmt.Errorf("wire: protocol violation: bad client handshake %q", buf)
	}
	return nil
}

// HandshakeAsClient performs the worker side: read the server's greeting,
// verify it, then reply.
func (c *Channel) HandshakeAsClient() error {
	buf := make([]byte, len(HandshakeServer))
	if _, err := readFull(c.r, buf); err != nil {
		return fmt.Errorf("wire: handshake read: %w", err)
	}
	if string(buf) != HandshakeServer {
		return fmt.Errorf("wire: protocol violation: bad server handshake %q", buf)
	}
	if _, err := c.w.WriteString(HandshakeClient); err != nil {
		return err
	}
	return c.w.Flush()
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadTag reads a four-byte message tag. Any short read from a closed
// channel is a protocol violation (§7) and is returned as an error for the
// caller to treat as fatal.
func (c *Channel) ReadTag() (Tag, error) {
	var t Tag
	if _, err := readFull(c.r, t[:]); err != nil {
		return t, err
	}
	return t, nil
}

// ReadElapsedMs reads the little-endian millisecond timestamp that follows
// every tag.
func (c *Channel) ReadElapsedMs() (uint32, error) {
	return c.ReadU32()
}

func (c *Channel) ReadU32() (uint32, error) {
	var buf [4]byte
	if _, err := readFull(c.r, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

func (c *Channel) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Channel) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := readFull(c.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadCString reads a zero-terminated string (paths and open modes, §6.1).
func (c *Channel) ReadCString() (string, error) {
	var buf []byte
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

func (c *Channel) WriteTag(t Tag) error {
	_, err := c.w.Write(t[:])
	return err
}

func (c *Channel) WriteU32(v uint32) error {
	var buf [4]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	_, err := c.w.Write(buf[:])
	return err
}

func (c *Channel) WriteI32(v int32) error { return c.WriteU32(uint32(v)) }

func (c *Channel) WriteBytes(b []byte) error {
	_, err := c.w.Write(b)
	return err
}

func (c *Channel) WriteCString(s string) error {
	if _, err := c.w.WriteString(s); err != nil {
		return err
	}
	return c.w.WriteByte(0)
}

// Flush pushes any buffered output onto the socket.
func (c *Channel) Flush() error { return c.w.Flush() }

// HasPendingQuery reports whether any input is already buffered, and
// otherwise polls the socket for up to timeoutMs for readability (§4.7.7,
// §5's "bounded poll").
func (c *Channel) HasPendingQuery(timeoutMs int) (bool, error) {
	if c.r.Buffered() > 0 {
		return true, nil
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return false, err
	}
	var ready bool
	var pollErr error
	err = rawConn.Control(func(fd uintptr) {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLRDNORM}}
		for {
			n, e := unix.Poll(pfd, timeoutMs)
			if e == unix.EINTR {
				continue
			}
			if e != nil {
				pollErr = e
				return
			}
			ready = n > 0
			return
		}
	})
	if err != nil {
		return false, err
	}
	return ready, pollErr
}

// SendFD carries fd out-of-band via SCM_RIGHTS, used by the CHLD relay
// (§4.7.2, §6.1). Any buffered plain output is flushed first so byte
// ordering between the regular stream and the control message is preserved.
func (c *Channel) SendFD(fd int) error {
	if err := c.Flush(); err != nil {
		return err
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return err
	}
	oob := unix.UnixRights(fd)
	var sendErr error
	err = rawConn.Write(func(sysfd uintptr) bool {
		sendErr = unix.Sendmsg(int(sysfd), nil, oob, nil, 0)
		return true
	})
	if err != nil {
		return err
	}
	return sendErr
}

// RecvFD reads one out-of-band file descriptor. A CHLD message carrying
// zero or more than one descriptor is a protocol violation (§7).
func (c *Channel) RecvFD() (int, error) {
	if c.r.Buffered() > 0 {
		return 0, fmt.Errorf("wire: RecvFD called with buffered plain data pending")
	}
	rawConn, err := c.conn.SyscallConn()
	if err != nil {
		return 0, err
	}
	oob := make([]byte, unix.CmsgSpace(4))
	var n, oobn int
	var recvErr error
	err = rawConn.Read(func(sysfd uintptr) bool {
		n, oobn, _, _, recvErr = unix.Recvmsg(int(sysfd), nil, oob, 0)
		return true
	})
	if err != nil {
		return 0, err
	}
	if recvErr != nil {
		return 0, recvErr
	}
	_ = n
	msgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return 0, err
	}
	if len(msgs) != 1 {
		return 0, fmt.Errorf("wire: protocol violation: expected 1 control message, got %d", len(msgs))
	}
	fds, err := unix.ParseUnixRights(&msgs[0])
	if err != nil {
		return 0, err
	}
	if len(fds) != 1 {
		return 0, fmt.Errorf("wire: protocol violation: CHLD carried %d fds, want 1", len(fds))
	}
	return fds[0], nil
}

// SocketPair creates a connected pair of Unix domain sockets suitable for
// handing one end to a freshly exec'd worker (§4.7.1 step 2).
func SocketPair() (parent, child *net.UnixConn, err error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, err
	}
	pf, err := fdToUnixConn(fds[0])
	if err != nil {
		return nil, nil, err
	}
	cf, err := fdToUnixConn(fds[1])
	if err != nil {
		pf.Close()
		return nil, nil, err
	}
	return pf, cf, nil
}
