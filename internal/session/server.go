package session

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/Andromalius22/Nexora/internal/model"
	"github.com/Andromalius22/Nexora/internal/players"
	"github.com/Andromalius22/Nexora/pkg/arguments"
	"github.com/Andromalius22/Nexora/pkg/frame"
	"github.com/Andromalius22/Nexora/pkg/logger"
)

// Server :
// The TCP front of the game. Each accepted connection runs its
// own goroutine: login, initial synchronization, then the
// command loop. Connected clients are tracked in two maps so
// tick-driven pushes can target the connection of a player;
// both maps are cleaned on every exit path.
//
// The `lock` guards the two client maps. Per-client writes are
// guarded by the client's own send mutex, not by this lock.
type Server struct {
	config  arguments.Config
	reg     *model.Registry
	manager *players.Manager
	log     logger.Logger

	listener net.Listener

	lock            sync.RWMutex
	clients         map[*Client]struct{}
	clientForPlayer map[string]*Client

	ticks *tickScheduler
}

// ErrAuth : Indicates a login packet missing its required
// fields. The connection is closed without an ack.
var ErrAuth = fmt.Errorf("invalid login packet")

// NewServer :
// Builds a game server from the parsed configuration.
//
// The `config` defines the runtime knobs.
//
// The `reg` defines the content registry.
//
// The `manager` defines the player store.
//
// The `log` defines a way to notify from the server.
//
// Returns the built-in server.
func NewServer(config arguments.Config, reg *model.Registry, manager *players.Manager, log logger.Logger) *Server {
	s := &Server{
		config:          config,
		reg:             reg,
		manager:         manager,
		log:             log,
		clients:         make(map[*Client]struct{}),
		clientForPlayer: make(map[string]*Client),
	}

	s.ticks = newTickScheduler(s)

	return s
}

// Serve :
// Binds the configured address, starts the tick loops and
// accepts connections until the listener is closed through
// `Stop`.
//
// Returns any error preventing the server from serving.
func (s *Server) Serve() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s (err: %v)", addr, err)
	}
	s.listener = listener

	if err := s.ticks.start(); err != nil {
		listener.Close()
		return err
	}

	s.log.Trace(logger.Notice, "server", fmt.Sprintf("Listening on %s", addr))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Trace(logger.Error, "server", fmt.Sprintf("Failed to accept connection (err: %v)", err))
			continue
		}

		go s.handleConnection(conn)
	}
}

// Addr :
// The bound address of the server, valid once `Serve` has
// started listening.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop :
// Closes the listener, disconnects every client and stops the
// tick loops after their in-flight iterations.
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}

	s.ticks.stop()

	s.lock.Lock()
	for c := range s.clients {
		c.Close()
	}
	s.clients = make(map[*Client]struct{})
	s.clientForPlayer = make(map[string]*Client)
	s.lock.Unlock()
}

// ConnectedCount : Number of currently connected clients.
func (s *Server) ConnectedCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.clients)
}

// handleConnection :
// Runs the whole life of one connection: login, registration,
// initial synchronization, command loop, cleanup.
func (s *Server) handleConnection(conn net.Conn) {
	client := newClient(conn, s.config.MaxFrameSize)

	player, err := s.login(client)
	if err != nil {
		s.log.Trace(logger.Warning, "server", fmt.Sprintf("Closing connection from %s (err: %v)", conn.RemoteAddr(), err))
		client.Close()
		return
	}
	client.player = player

	s.register(client)
	defer s.unregister(client)

	if err := s.syncClient(client); err != nil {
		s.log.Trace(logger.Warning, "server", fmt.Sprintf("Failed to synchronize \"%s\" (err: %v)", player.Name, err))
		return
	}

	s.commandLoop(client)
}

// login :
// Reads the first frame of a connection and resolves the
// player. The frame must be a `login` packet carrying a name
// and an optional token; anything else closes the connection.
func (s *Server) login(client *Client) (*players.Player, error) {
	packet, err := client.codec.Read()
	if err != nil {
		return nil, err
	}

	if asString(packet["type"]) != "login" {
		return nil, fmt.Errorf("%w: unexpected message type during login", frame.ErrProtocol)
	}

	name := asString(packet["name"])
	token := asString(packet["token"])
	if len(name) == 0 && len(token) == 0 {
		return nil, ErrAuth
	}

	player, err := s.manager.Resolve(token, name)
	if err != nil {
		return nil, err
	}

	ack := map[string]interface{}{
		"type":           "login_ack",
		"player_id":      player.ID,
		"token":          player.Token,
		"home_system_id": player.HomeSystemID,
	}
	if err := client.Send(ack); err != nil {
		return nil, err
	}

	return player, nil
}

// register : Tracks a client in both maps.
func (s *Server) register(client *Client) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.clients[client] = struct{}{}
	s.clientForPlayer[client.player.ID] = client
}

// unregister :
// Removes a client from both maps and closes it. Safe to call
// on every exit path; the player entry is only removed when it
// still points at this client.
func (s *Server) unregister(client *Client) {
	s.lock.Lock()
	delete(s.clients, client)
	if current, ok := s.clientForPlayer[client.player.ID]; ok && current == client {
		delete(s.clientForPlayer, client.player.ID)
	}
	s.lock.Unlock()

	client.Close()

	s.log.Trace(logger.Info, "server", fmt.Sprintf("Player \"%s\" disconnected", client.player.Name))
}

// syncClient :
// Sends the initial state of a session: the serialized
// registry, then the player's full galaxy.
func (s *Server) syncClient(client *Client) error {
	sync := map[string]interface{}{
		"type":     "registry_sync",
		"registry": s.reg.Serialize(),
	}
	if err := client.Send(sync); err != nil {
		return err
	}

	galaxy := map[string]interface{}{
		"type":   "full_galaxy_sync",
		"galaxy": client.player.Galaxy.ToSnapshot(),
	}
	return client.Send(galaxy)
}

// commandLoop :
// Reads frames until the peer closes or violates the framing
// protocol. Each accepted frame is handed to the dispatcher;
// frames beyond the rate budget are dropped.
func (s *Server) commandLoop(client *Client) {
	for {
		packet, err := client.codec.Read()
		if err != nil {
			if !errors.Is(err, frame.ErrConnectionClosed) {
				s.log.Trace(logger.Warning, "server", fmt.Sprintf("Protocol failure for \"%s\" (err: %v)", client.player.Name, err))
			}
			return
		}

		if !client.limiter.Allow() {
			s.log.Trace(logger.Warning, "server", fmt.Sprintf("Dropping command from \"%s\": rate budget exceeded", client.player.Name))
			continue
		}

		s.dispatch(client, packet)
	}
}

// pushToPlayer :
// Sends a packet to the connection of a player if connected;
// absence is silent. A failed write triggers cleanup of the
// connection.
//
// The `playerID` defines the target player.
//
// The `packet` defines the payload to frame.
func (s *Server) pushToPlayer(playerID string, packet interface{}) {
	s.lock.RLock()
	client, ok := s.clientForPlayer[playerID]
	s.lock.RUnlock()

	if !ok {
		return
	}

	if err := client.Send(packet); err != nil {
		s.log.Trace(logger.Warning, "server", fmt.Sprintf("Failed to push to player %s, cleaning up (err: %v)", playerID, err))
		s.unregister(client)
	}
}
